// Package assembly turns query results into ordered, grouped chart panels.
package assembly

import (
	"sort"

	"github.com/KaramelBytes/hdiview/internal/query"
	"github.com/KaramelBytes/hdiview/internal/store"
	"github.com/KaramelBytes/hdiview/internal/viewstate"
)

// SeriesRecord is one line on a panel. It is built once per pass and never
// mutated afterwards.
type SeriesRecord struct {
	Label   string       `json:"label"`
	Group   string       `json:"group,omitempty"`
	Points  store.Series `json:"points"`
	Overlay bool         `json:"overlay"`
}

// Legend is the label shown in the chart legend.
func (r SeriesRecord) Legend() string {
	if r.Group == "" {
		return r.Label
	}
	return r.Label + " (" + r.Group + ")"
}

// First returns the first y value; records are ordered on it.
func (r SeriesRecord) First() float64 {
	if len(r.Points) == 0 {
		return 0
	}
	return r.Points[0].Y
}

// Panel is one chart area.
type Panel struct {
	Metric string `json:"metric"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	// OverlayRequested distinguishes "no comparison states selected" from
	// "selected but none had data".
	OverlayRequested bool           `json:"overlay_requested"`
	Overlays         []SeriesRecord `json:"overlays"`
	Primaries        []SeriesRecord `json:"primaries"`
}

// Series returns the overlay batch followed by the primary batch.
func (p Panel) Series() []SeriesRecord {
	out := make([]SeriesRecord, 0, len(p.Overlays)+len(p.Primaries))
	out = append(out, p.Overlays...)
	return append(out, p.Primaries...)
}

// Chart is the render-ready output of a pass.
type Chart struct {
	Panels []Panel `json:"panels"`
	// Grid is the running panel count used to size the layout grid.
	Grid     int  `json:"grid"`
	Vertical bool `json:"vertical"`
}

// Assemble orders the results of one metric into a panel. Overlays and
// primaries are sorted separately, each descending by first y value with
// ties kept in fan-out order. It reports false when no series has data.
func Assemble(metric string, results []query.Result) (Panel, bool) {
	p := Panel{Metric: metric, YLabel: metric}
	for _, r := range results {
		if len(r.Series) == 0 {
			continue
		}
		rec := SeriesRecord{
			Label:   r.Entity,
			Group:   r.Group,
			Points:  append(store.Series(nil), r.Series...),
			Overlay: r.Overlay,
		}
		if r.Overlay {
			p.Overlays = append(p.Overlays, rec)
		} else {
			p.Primaries = append(p.Primaries, rec)
		}
	}
	if len(p.Overlays) == 0 && len(p.Primaries) == 0 {
		return Panel{}, false
	}
	sortBatch(p.Overlays)
	sortBatch(p.Primaries)
	return p, true
}

func sortBatch(b []SeriesRecord) {
	sort.SliceStable(b, func(i, j int) bool { return b[i].First() > b[j].First() })
}

// Build assembles every fanned-out panel in order. results[i] holds the
// results of panels[i]. Empty panels are omitted.
func Build(s viewstate.ViewState, panels []query.Panel, results [][]query.Result) Chart {
	c := Chart{Vertical: s.Layout == viewstate.Vertical, Panels: []Panel{}}
	for i, qp := range panels {
		if i >= len(results) {
			break
		}
		p, ok := Assemble(qp.Metric, results[i])
		if !ok {
			continue
		}
		p.XLabel = s.XMetric.Name
		p.OverlayRequested = qp.OverlayRequested
		c.Panels = append(c.Panels, p)
		c.Grid++
	}
	return c
}
