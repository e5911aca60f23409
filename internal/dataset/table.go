// Package dataset reads indicator observation tables from CSV/TSV and XLSX
// files. Two layouts are accepted: long (entity, indicator, year, value) and
// wide (entity, indicator, then one column per year).
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoHeader is returned for empty inputs.
var ErrNoHeader = errors.New("dataset has no header row")

// ErrLayout is returned when neither layout can be recognised.
var ErrLayout = errors.New("unrecognised dataset layout")

// Options controls parsing.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Sheet selects the XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// DefaultOptions returns reasonable defaults for indicator tables.
func DefaultOptions() Options {
	return Options{MaxRows: 1_000_000}
}

// Observation is a single (entity, indicator, year) value.
type Observation struct {
	Entity    string
	Indicator string
	Year      int
	Value     float64
}

// Table is the parsed content of one file.
type Table struct {
	Name         string
	Layout       string // long|wide
	Rows         int
	Processed    int
	Skipped      int
	Observations []Observation
	Warnings     []string
}

var (
	entityHeaders    = []string{"entity", "country", "country name", "state", "state name", "region", "name"}
	indicatorHeaders = []string{"indicator", "indicator name", "metric", "series", "series name"}
	yearHeaders      = []string{"year", "time"}
	valueHeaders     = []string{"value", "val", "observation"}
)

// Load reads a file, choosing the parser by extension.
func Load(path string, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ReadXLSX(path, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := ReadCSV(f, opt)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// ReadCSV parses delimited text.
func ReadCSV(r io.Reader, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	b, err := newBuilder(header, opt)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", b.t.Rows+1, err)
		}
		b.add(rec)
	}
	return b.finish(), nil
}

// builder turns rows into observations for either layout.
type builder struct {
	opt       Options
	t         *Table
	entity    int
	indicator int
	year      int
	value     int
	yearCols  []yearCol
	maxRows   int
}

func newBuilder(header []string, opt Options) (*builder, error) {
	if len(header) == 0 {
		return nil, ErrNoHeader
	}
	b := &builder{opt: opt, t: &Table{}, entity: -1, indicator: -1, year: -1, value: -1}
	b.maxRows = opt.MaxRows
	if b.maxRows <= 0 {
		b.maxRows = math.MaxInt
	}
	var yearCols []yearCol
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case b.entity < 0 && contains(entityHeaders, name):
			b.entity = i
		case b.indicator < 0 && contains(indicatorHeaders, name):
			b.indicator = i
		case b.year < 0 && contains(yearHeaders, name):
			b.year = i
		case b.value < 0 && contains(valueHeaders, name):
			b.value = i
		default:
			if y, ok := parseYearHeader(name); ok {
				yearCols = append(yearCols, yearCol{index: i, year: y})
			}
		}
	}
	if b.entity < 0 || b.indicator < 0 {
		return nil, fmt.Errorf("%w: need entity and indicator columns, got %v", ErrLayout, header)
	}
	switch {
	case b.year >= 0 && b.value >= 0:
		b.t.Layout = "long"
	case len(yearCols) > 0:
		b.t.Layout = "wide"
		b.yearCols = yearCols
	default:
		return nil, fmt.Errorf("%w: need year/value columns or year-named columns", ErrLayout)
	}
	return b, nil
}

func (b *builder) add(rec []string) {
	b.t.Rows++
	if b.t.Processed >= b.maxRows {
		return
	}
	b.t.Processed++
	entity := cell(rec, b.entity)
	indicator := cell(rec, b.indicator)
	if entity == "" || indicator == "" {
		b.t.Skipped++
		return
	}
	if b.t.Layout == "long" {
		year, err := strconv.Atoi(cell(rec, b.year))
		if err != nil {
			b.t.Skipped++
			return
		}
		v, ok := parseNumeric(cell(rec, b.value), b.opt)
		if !ok {
			b.t.Skipped++
			return
		}
		b.t.Observations = append(b.t.Observations, Observation{Entity: entity, Indicator: indicator, Year: year, Value: v})
		return
	}
	for _, yc := range b.yearCols {
		raw := cell(rec, yc.index)
		if raw == "" || raw == ".." {
			continue
		}
		v, ok := parseNumeric(raw, b.opt)
		if !ok {
			continue
		}
		b.t.Observations = append(b.t.Observations, Observation{Entity: entity, Indicator: indicator, Year: yc.year, Value: v})
	}
}

func (b *builder) finish() *Table {
	if b.t.Processed < b.t.Rows {
		b.t.Warnings = append(b.t.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", b.t.Processed, b.t.Rows))
	}
	if b.t.Skipped > 0 {
		b.t.Warnings = append(b.t.Warnings, fmt.Sprintf("skipped %d rows with missing or unparseable fields", b.t.Skipped))
	}
	return b.t
}

type yearCol struct {
	index int
	year  int
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parseYearHeader accepts "1990" and World Bank style "1990 [YR1990]".
func parseYearHeader(h string) (int, bool) {
	if i := strings.IndexByte(h, ' '); i > 0 {
		h = h[:i]
	}
	if len(h) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(h)
	if err != nil || y < 1000 {
		return 0, false
	}
	return y, true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
