package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hdiview/internal/export"
	"github.com/KaramelBytes/hdiview/internal/metrics"
)

var (
	expFormat string
	expOutput string
	expFrom   string
)

var exportCmd = &cobra.Command{
	Use:   "export [key=value ...]",
	Short: "Export the current view's country data as CSV or XLSX",
	Long: `Builds the download table for the view described by the stored session
plus any key=value arguments. Downloads exist only in world scope with at
least one country selected. Use -o - to write CSV to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimPrefix(expFormat, "."))
		if format != "csv" && format != "xlsx" {
			return fmt.Errorf("unsupported --format: %s (use csv|xlsx)", expFormat)
		}
		sess, err := loadSession()
		if err != nil {
			return err
		}
		raw, err := viewParams(sess, expFrom, args)
		if err != nil {
			return err
		}
		eng, h, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer h.Close()

		res := eng.Run(cmd.Context(), raw, sess.Scope())
		if !res.Downloads {
			return errors.New("downloads are only available in world scope with at least one country selected")
		}
		t := export.BuildTable(cmd.Context(), eng.Store, res.State, logger)
		if t.Empty() {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no data for the selected countries; writing headers only")
		}

		var buf bytes.Buffer
		if format == "xlsx" {
			err = export.WriteXLSX(&buf, t)
		} else {
			err = export.WriteCSV(&buf, t)
		}
		if err != nil {
			return err
		}
		metrics.ObserveExport(format)

		if expOutput == "-" {
			if format == "xlsx" {
				return errors.New("refusing to write xlsx to stdout; use -o <file>")
			}
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		path := expOutput
		if path == "" {
			path = export.FileName(res.State, "."+format)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", len(t.Rows), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expFormat, "format", "csv", "output format: csv|xlsx")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path (default <x>_<y>.<format>; '-' for stdout)")
	exportCmd.Flags().StringVar(&expFrom, "from", "", "use a named bookmark instead of the last view")
}
