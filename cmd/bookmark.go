package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hdiview/internal/params"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage saved views",
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession()
		if err != nil {
			return err
		}
		list := sess.ListBookmarks()
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks. Save one with: hdiview view --save-as <name>")
			return nil
		}
		for _, bm := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s  ?%s\n", bm.Name, bm.SavedAt.Format("2006-01-02 15:04"), params.QueryString(bm.Params))
		}
		return nil
	},
}

var bookmarkRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession()
		if err != nil {
			return err
		}
		if !sess.RemoveBookmark(args[0]) {
			return fmt.Errorf("bookmark not found: %s", args[0])
		}
		if err := sess.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed bookmark '%s'\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)
	bookmarkCmd.AddCommand(bookmarkListCmd, bookmarkRmCmd)
}
