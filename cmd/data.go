package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hdiview/internal/dataset"
	"github.com/KaramelBytes/hdiview/internal/store"
	"github.com/KaramelBytes/hdiview/internal/utils"
)

var (
	dataKind       string
	dataOutputPath string
	dataDelimiter  string
	dataDecimal    string
	dataThousands  string
	dataMaxRows    int
	dataSheetName  string
	dataExt        string
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage indicator datasets",
}

var dataInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Parse a CSV/TSV/XLSX dataset and report indicator coverage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := datasetOptions()
		if err != nil {
			return err
		}
		t, err := dataset.Load(args[0], opt)
		if err != nil {
			return err
		}
		md := dataset.Summarize(t).Markdown()
		if dataOutputPath != "" {
			if err := os.WriteFile(dataOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote coverage report to %s\n", dataOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

var dataImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a dataset into the SQLite store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := store.ParseKind(dataKind)
		if err != nil {
			return err
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt, err := datasetOptions()
		if err != nil {
			return err
		}
		t, err := dataset.Load(args[0], opt)
		if err != nil {
			return err
		}
		for _, w := range t.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s\n", w)
		}
		if err := utils.EnsureDir(filepath.Dir(c.SQLitePath)); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
		db, err := store.OpenSQLite(cmd.Context(), c.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := db.Import(cmd.Context(), kind, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d %s observations into %s\n", n, kind, c.SQLitePath)
		if c.Store != store.BackendSQLite {
			fmt.Fprintln(cmd.OutOrStdout(), "  Hint: run `hdiview config set store sqlite` to read from it")
		}
		return nil
	},
}

var dataFetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a dataset into the data directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := store.ParseKind(dataKind)
		if err != nil {
			return err
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ext := dataExt
		if ext == "" {
			ext = extFromURL(args[0])
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		switch ext {
		case ".csv", ".tsv", ".xlsx":
		default:
			return fmt.Errorf("unsupported dataset extension %q (use --ext csv|tsv|xlsx)", ext)
		}
		dest := store.DataFile(c.DataDir, kind, ext)
		// Stage next to dest; the store only reads countries.* and states.*.
		tmp := filepath.Join(filepath.Dir(dest), ".fetch-"+filepath.Base(dest))
		timeout := time.Duration(c.FetchTimeoutSec) * time.Second
		n, err := fetchToFile(cmd.Context(), args[0], tmp, timeout)
		if err != nil {
			return err
		}
		if _, err := dataset.Load(tmp, dataset.DefaultOptions()); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("downloaded file does not parse, %s left unchanged: %w", dest, err)
		}
		if err := os.Rename(tmp, dest); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("install dataset: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %d bytes to %s\n", n, dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataInspectCmd, dataImportCmd, dataFetchCmd)

	for _, c := range []*cobra.Command{dataInspectCmd, dataImportCmd} {
		c.Flags().StringVar(&dataDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
		c.Flags().StringVar(&dataDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
		c.Flags().StringVar(&dataThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
		c.Flags().IntVar(&dataMaxRows, "max-rows", 0, "maximum rows to process (0 = default limit)")
		c.Flags().StringVar(&dataSheetName, "sheet-name", "", "XLSX: sheet name to read (default first sheet)")
	}
	dataInspectCmd.Flags().StringVarP(&dataOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	dataImportCmd.Flags().StringVar(&dataKind, "kind", "country", "entity kind: country|state")
	dataFetchCmd.Flags().StringVar(&dataKind, "kind", "country", "entity kind: country|state")
	dataFetchCmd.Flags().StringVar(&dataExt, "ext", "", "file type when the URL has none: csv|tsv|xlsx")
}

func datasetOptions() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	if dataMaxRows > 0 {
		opt.MaxRows = dataMaxRows
	}
	opt.Sheet = dataSheetName
	switch dataDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", dataDelimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(dataDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", dataDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(dataThousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", dataThousands)
	}
	return opt, nil
}

func extFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ".csv"
	}
	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		return ext
	}
	return ".csv"
}
