package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Coverage summarises which indicators a table holds and for how many
// entities and years.
type Coverage struct {
	Name       string
	Layout     string
	Rows       int
	Entities   int
	Indicators []IndicatorCoverage
	Warnings   []string
}

// IndicatorCoverage describes one indicator column of a table.
type IndicatorCoverage struct {
	Name         string
	Entities     int
	Observations int
	FirstYear    int
	LastYear     int
	Min, Max     float64
	Mean         float64
}

// Summarize computes the coverage of a table. Indicators are sorted by
// observation count, then name.
func Summarize(t *Table) Coverage {
	c := Coverage{Name: t.Name, Layout: t.Layout, Rows: t.Rows, Warnings: t.Warnings}
	type acc struct {
		entities map[string]bool
		n        int
		sum      float64
		min, max float64
		first    int
		last     int
	}
	entities := map[string]bool{}
	byInd := map[string]*acc{}
	for _, o := range t.Observations {
		entities[strings.ToLower(o.Entity)] = true
		a := byInd[o.Indicator]
		if a == nil {
			a = &acc{entities: map[string]bool{}, min: o.Value, max: o.Value, first: o.Year, last: o.Year}
			byInd[o.Indicator] = a
		}
		a.entities[strings.ToLower(o.Entity)] = true
		a.n++
		a.sum += o.Value
		if o.Value < a.min {
			a.min = o.Value
		}
		if o.Value > a.max {
			a.max = o.Value
		}
		if o.Year < a.first {
			a.first = o.Year
		}
		if o.Year > a.last {
			a.last = o.Year
		}
	}
	c.Entities = len(entities)
	for name, a := range byInd {
		c.Indicators = append(c.Indicators, IndicatorCoverage{
			Name:         name,
			Entities:     len(a.entities),
			Observations: a.n,
			FirstYear:    a.first,
			LastYear:     a.last,
			Min:          a.min,
			Max:          a.max,
			Mean:         a.sum / float64(a.n),
		})
	}
	sort.Slice(c.Indicators, func(i, j int) bool {
		if c.Indicators[i].Observations == c.Indicators[j].Observations {
			return c.Indicators[i].Name < c.Indicators[j].Name
		}
		return c.Indicators[i].Observations > c.Indicators[j].Observations
	})
	return c
}

// Markdown renders a compact coverage report.
func (c Coverage) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET COVERAGE]\n")
	if c.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", c.Name))
	}
	b.WriteString(fmt.Sprintf("Layout: %s\n", c.Layout))
	b.WriteString(fmt.Sprintf("Rows: %d\n", c.Rows))
	b.WriteString(fmt.Sprintf("Entities: %d\n", c.Entities))
	b.WriteString(fmt.Sprintf("Indicators: %d\n", len(c.Indicators)))
	if len(c.Indicators) > 0 {
		b.WriteString("\n[INDICATORS]\n")
		for _, ic := range c.Indicators {
			b.WriteString(fmt.Sprintf("- %s: %d entities, %d observations, %d–%d, min %.4g, max %.4g, mean %.4g\n",
				safeVal(ic.Name), ic.Entities, ic.Observations, ic.FirstYear, ic.LastYear, ic.Min, ic.Max, ic.Mean))
		}
	}
	if len(c.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range c.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
