package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hdiview/internal/assembly"
	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/dashboard"
	"github.com/KaramelBytes/hdiview/internal/params"
	"github.com/KaramelBytes/hdiview/internal/render"
	"github.com/KaramelBytes/hdiview/internal/session"
	"github.com/KaramelBytes/hdiview/internal/utils"
)

var (
	viewWorld  bool
	viewIndia  bool
	viewPNG    string
	viewJSON   bool
	viewReset  bool
	viewSaveAs string
	viewFrom   string
)

var viewCmd = &cobra.Command{
	Use:   "view [key=value ...]",
	Short: "Reconcile parameters into a view and print it",
	Long: `Runs one reconciliation pass. Parameters use the dashboard keys
(world, x, y, gender, other, c, s, sy, ey, vertical) with comma-separated lists,
e.g. hdiview view c=India,Brazil s=Kerala gender=Male,Female sy=1990 ey=2015.

The last reconciled parameters and scope are kept in the session file, so
arguments only need to name what changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession()
		if err != nil {
			return err
		}
		if viewReset {
			sess.Reset()
		}
		base, err := baseParams(sess, viewFrom)
		if err != nil {
			return err
		}
		// Toggle the stored view; arguments still override it.
		switch {
		case viewWorld:
			base = dashboard.Toggle(base, sess.Scope(), catalog.ScopeWorld)
		case viewIndia:
			base = dashboard.Toggle(base, sess.Scope(), catalog.ScopeIndia)
		}
		over, err := assignments(args)
		if err != nil {
			return err
		}
		raw := base.Merge(over)

		eng, h, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer h.Close()
		res := eng.Run(cmd.Context(), raw, sess.Scope())

		sess.Record(res.Params, res.State.Scope)
		if viewSaveAs != "" {
			if _, err := sess.AddBookmark(viewSaveAs, res.Params); err != nil {
				return err
			}
		}
		if err := sess.Save(); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		out := cmd.OutOrStdout()
		if viewPNG != "" {
			if err := writePNG(viewPNG, res.Chart); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote chart to %s\n", viewPNG)
		}
		if viewSaveAs != "" {
			fmt.Fprintf(out, "✓ Saved bookmark '%s'\n", viewSaveAs)
		}
		if viewJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		printView(out, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().BoolVar(&viewWorld, "world", false, "switch to world scope before the pass")
	viewCmd.Flags().BoolVar(&viewIndia, "india", false, "switch to India scope before the pass")
	viewCmd.Flags().StringVar(&viewPNG, "png", "", "write the chart to this PNG file")
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "print the full result as JSON")
	viewCmd.Flags().BoolVar(&viewReset, "reset", false, "ignore stored parameters and start from defaults")
	viewCmd.Flags().StringVar(&viewSaveAs, "save-as", "", "store the reconciled parameters as a named bookmark")
	viewCmd.Flags().StringVar(&viewFrom, "from", "", "start from a named bookmark instead of the last view")
	viewCmd.MarkFlagsMutuallyExclusive("world", "india")
}

func loadSession() (*session.Session, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return session.Load(c.SessionFile)
}

// viewParams layers command-line assignments over the stored parameters
// (or a bookmark when from is set).
func viewParams(sess *session.Session, from string, args []string) (params.Values, error) {
	base, err := baseParams(sess, from)
	if err != nil {
		return nil, err
	}
	over, err := assignments(args)
	if err != nil {
		return nil, err
	}
	return base.Merge(over), nil
}

func baseParams(sess *session.Session, from string) (params.Values, error) {
	if from == "" {
		return params.Decode(sess.Params), nil
	}
	bm, ok := sess.Bookmark(from)
	if !ok {
		return nil, fmt.Errorf("bookmark not found: %s", from)
	}
	return params.Decode(bm.Params), nil
}

func assignments(args []string) (params.Values, error) {
	for _, a := range args {
		if !strings.Contains(a, "=") {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", a)
		}
	}
	return params.ParseAssignments(args), nil
}

func writePNG(path string, c assembly.Chart) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := render.PNG(f, c, chartOptions()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printView(w io.Writer, res dashboard.Result) {
	s := res.State
	fmt.Fprintf(w, "Scope: %s\n", s.Scope)
	fmt.Fprintf(w, "Y: %s  X: %s\n", s.YMetric.Name, s.XMetric.Name)
	if s.GenderApplies() {
		g := make([]string, len(s.GenderFilters))
		for i, x := range s.GenderFilters {
			g[i] = string(x)
		}
		fmt.Fprintf(w, "Gender: %s\n", strings.Join(g, ", "))
	}
	fmt.Fprintf(w, "Entities: %s\n", strings.Join(s.Entities, ", "))
	if len(s.ComparisonStates) > 0 {
		fmt.Fprintf(w, "Comparison states: %s\n", strings.Join(s.ComparisonStates, ", "))
	}
	fmt.Fprintf(w, "Years: %d-%d  Layout: %s\n", s.TimeRange.Start, s.TimeRange.End, s.Layout)

	if res.Chart.Grid == 0 {
		fmt.Fprintln(w, "\n(no data for the current selection)")
	}
	for _, p := range res.Chart.Panels {
		fmt.Fprintf(w, "\n[%s]\n", p.Metric)
		if p.OverlayRequested && len(p.Overlays) == 0 {
			fmt.Fprintln(w, "  (no data for comparison states)")
		}
		for _, r := range p.Series() {
			tag := ""
			if r.Overlay {
				tag = " (comparison)"
			}
			first, last := r.Points[0], r.Points[len(r.Points)-1]
			fmt.Fprintf(w, "  %-32s %d: %.2f  →  %d: %.2f  (%d points)%s\n",
				r.Legend(), first.X, first.Y, last.X, last.Y, len(r.Points), tag)
		}
	}
	fmt.Fprintf(w, "\nShare: ?%s\n", res.Share)
	if res.Downloads {
		fmt.Fprintf(w, "Download: hdiview export --format csv  (%s.csv)\n", res.FileStem)
	}
}
