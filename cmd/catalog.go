package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hdiview/internal/catalog"
)

var (
	catScope    string
	catEntities bool
	catNotes    bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List metrics, indicators and entities selectable in a scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, ok := catalog.ParseScope(catScope)
		if !ok {
			return fmt.Errorf("invalid --scope: %s (use world|india)", catScope)
		}
		cat := catalog.Default()
		if catEntities {
			h, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()
			cat = loadCatalog(cmd.Context(), h)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Scope: %s\n\n", sc)
		fmt.Fprintln(out, "Y-axis metrics (y=<key>):")
		for i, m := range catalog.Metrics(sc) {
			def := ""
			if i == 0 {
				def = "  (default)"
			}
			fmt.Fprintf(out, "  %-16s %s%s\n", m.Key, m.Name, def)
		}
		fmt.Fprintln(out, "\nOther indicators (other=<name>,...):")
		for _, m := range catalog.OtherIndicators(sc) {
			fmt.Fprintf(out, "  %s\n", m.Name)
		}
		g := make([]string, len(catalog.Genders))
		for i, x := range catalog.Genders {
			g[i] = string(x)
		}
		fmt.Fprintf(out, "\nGenders: %s\n", strings.Join(g, ", "))
		fmt.Fprintf(out, "Years: %d-%d\n", catalog.MinYear, catalog.MaxYear)

		if catEntities {
			if sc == catalog.ScopeWorld {
				fmt.Fprintf(out, "\nCountries (c=):\n  %s\n", strings.Join(cat.Countries, ", "))
				fmt.Fprintf(out, "\nComparison states (s=):\n  %s\n", strings.Join(cat.States, ", "))
			} else {
				fmt.Fprintf(out, "\nStates (s=):\n  %s\n", strings.Join(cat.States, ", "))
			}
		} else {
			fmt.Fprintf(out, "\n%d countries, %d states (use --entities to list)\n", len(cat.Countries), len(cat.States))
		}
		if catNotes {
			fmt.Fprintf(out, "\n[DATA NOTES]\n%s\n", catalog.DataNotes)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringVar(&catScope, "scope", "world", "scope to describe: world|india")
	catalogCmd.Flags().BoolVar(&catEntities, "entities", false, "list every known entity, including those found in the data store")
	catalogCmd.Flags().BoolVar(&catNotes, "notes", true, "print notes about the data sources")
}
