// Package export builds the downloadable (entity, x, y) table for the
// current view and writes it as CSV or XLSX.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/hdiview/internal/query"
	"github.com/KaramelBytes/hdiview/internal/store"
	"github.com/KaramelBytes/hdiview/internal/viewstate"
)

// Row is one exported observation.
type Row struct {
	Entity string  `json:"entity"`
	X      int     `json:"x"`
	Y      float64 `json:"y"`
}

// Table is the download artifact.
type Table struct {
	Metric  string   `json:"metric"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// BuildTable re-issues lookups for every selected country under the download
// label, bounded by the time range. Outside World scope, or with no countries
// selected, the table has headers but no rows.
func BuildTable(ctx context.Context, st store.Store, s viewstate.ViewState, logger *slog.Logger) Table {
	label := s.DownloadLabel()
	t := Table{Metric: label, Headers: []string{"Entity", s.XMetric.Name, label}}
	if !s.DownloadsAvailable() {
		return t
	}
	w := &store.Window{Start: s.TimeRange.Start, End: s.TimeRange.End}
	qs := make([]query.Query, 0, len(s.Entities))
	for _, e := range s.Entities {
		qs = append(qs, query.Query{Entity: e, Kind: store.KindCountry, Metric: label, Window: w})
	}
	for _, r := range query.Execute(ctx, st, qs, logger) {
		for _, p := range r.Series {
			t.Rows = append(t.Rows, Row{Entity: r.Entity, X: p.X, Y: p.Y})
		}
	}
	return t
}

// FileName is the suggested download name, e.g. "Yea_Pri.csv".
func FileName(s viewstate.ViewState, ext string) string {
	return s.FileStem() + ext
}

func formatY(y float64) string { return strconv.FormatFloat(y, 'f', -1, 64) }

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write([]string{r.Entity, strconv.Itoa(r.X), formatY(r.Y)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the table to a single-sheet workbook named after the
// metric. Sheet names are limited to 31 characters by the format.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(t.Metric)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, r := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Entity, r.X, r.Y}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+2, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func sheetName(metric string) string {
	if metric == "" {
		return "Data"
	}
	r := []rune(metric)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
