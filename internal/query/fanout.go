// Package query expands a view state into the store lookups it needs and
// runs them.
package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/store"
	"github.com/KaramelBytes/hdiview/internal/viewstate"
)

// Query is one (entity, metric, window) lookup.
type Query struct {
	Entity  string
	Kind    store.Kind
	Metric  string // lookup label, e.g. "Female Primary Education"
	Group   string // gender tag or empty
	Overlay bool   // comparison state drawn under World scope
	Window  *store.Window
}

// Request converts the query into a store request.
func (q Query) Request() store.Request {
	return store.Request{Kind: q.Kind, Entity: q.Entity, Metric: q.Metric, Window: q.Window}
}

// Panel groups the queries feeding one chart panel.
type Panel struct {
	Metric           string // panel metric display name
	OverlayRequested bool
	Queries          []Query
}

// Fanout expands a state into panels: the primary metric first, then every
// secondary indicator in order. Within a panel, comparison states precede
// the primary entities; entities form the outer loop and gender the inner
// loop. Comparison states and India-scope states are looked up over their
// full history; countries are bounded by the time range.
func Fanout(s viewstate.ViewState) []Panel {
	labels := s.PrimaryLabels()
	panels := make([]Panel, 0, 1+len(s.OtherIndicators))
	panels = append(panels, expand(s, s.YMetric.Name, labels))
	for _, m := range s.OtherIndicators {
		panels = append(panels, expand(s, m.Name, []viewstate.Label{{Metric: m.Name}}))
	}
	return panels
}

func expand(s viewstate.ViewState, metric string, labels []viewstate.Label) Panel {
	p := Panel{Metric: metric}
	if s.Scope == catalog.ScopeIndia {
		p.Queries = entityQueries(s.Entities, store.KindState, labels, false, nil)
		return p
	}
	p.OverlayRequested = len(s.ComparisonStates) > 0
	p.Queries = entityQueries(s.ComparisonStates, store.KindState, labels, true, nil)
	w := &store.Window{Start: s.TimeRange.Start, End: s.TimeRange.End}
	p.Queries = append(p.Queries, entityQueries(s.Entities, store.KindCountry, labels, false, w)...)
	return p
}

func entityQueries(entities []string, kind store.Kind, labels []viewstate.Label, overlay bool, w *store.Window) []Query {
	out := make([]Query, 0, len(entities)*len(labels))
	for _, e := range entities {
		for _, l := range labels {
			out = append(out, Query{Entity: e, Kind: kind, Metric: l.Metric, Group: l.Group, Overlay: overlay, Window: w})
		}
	}
	return out
}

// Flatten concatenates the queries of every panel in order.
func Flatten(panels []Panel) []Query {
	var out []Query
	for _, p := range panels {
		out = append(out, p.Queries...)
	}
	return out
}

// Result is a query with the non-empty series it returned.
type Result struct {
	Query
	Series store.Series
}

// Execute runs each query in order. Absent or empty series are dropped;
// store failures are logged and dropped too, so a region without data simply
// does not appear.
func Execute(ctx context.Context, st store.Store, queries []Query, logger *slog.Logger) []Result {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]Result, 0, len(queries))
	for _, q := range queries {
		s, err := st.Lookup(ctx, q.Request())
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Warn("lookup failed", "request", q.Request().String(), "error", err)
			}
			continue
		}
		if len(s) == 0 {
			continue
		}
		out = append(out, Result{Query: q, Series: s})
	}
	return out
}
