// Package dashboard runs one reconciliation pass: decode, resolve, fan out,
// assemble, and re-encode.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/KaramelBytes/hdiview/internal/assembly"
	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/metrics"
	"github.com/KaramelBytes/hdiview/internal/params"
	"github.com/KaramelBytes/hdiview/internal/query"
	"github.com/KaramelBytes/hdiview/internal/store"
	"github.com/KaramelBytes/hdiview/internal/viewstate"
)

// Result is the output of a pass.
type Result struct {
	State viewstate.ViewState `json:"state"`
	// Params is the fully populated parameter map to persist.
	Params map[string]string `json:"params"`
	// Share is the query string that reproduces this view.
	Share string         `json:"share"`
	Chart assembly.Chart `json:"chart"`
	// Downloads is set when an export table can be built for this view.
	Downloads bool `json:"downloads"`
	FileStem  string `json:"file_stem"`
}

// Engine holds the read-only dependencies shared by every pass.
type Engine struct {
	Store   store.Store
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// New returns an engine whose lookups are counted in metrics.
func New(st store.Store, cat *catalog.Catalog, logger *slog.Logger) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Store: metrics.Instrument(st), Catalog: cat, Logger: logger}
}

// Run executes one pass. Nothing in a pass fails: malformed input falls back
// to defaults and missing data is simply absent from the chart.
func (e *Engine) Run(ctx context.Context, raw params.Values, prior catalog.Scope) Result {
	start := time.Now()
	s := viewstate.Resolve(raw, prior, e.Catalog)

	panels := query.Fanout(s)
	results := make([][]query.Result, len(panels))
	for i, p := range panels {
		results[i] = query.Execute(ctx, e.Store, p.Queries, e.Logger)
	}
	chart := assembly.Build(s, panels, results)

	encoded := s.Encode()
	if s.Scope == catalog.ScopeIndia {
		encoded[params.KeyCountry] = strings.Join(viewstate.HeldCountries(raw, e.Catalog), ",")
	}
	metrics.ObservePass(s.Scope.String(), chart.Grid)
	e.Logger.Debug("pass complete",
		"scope", s.Scope.String(),
		"y", s.YMetric.Key,
		"queries", len(query.Flatten(panels)),
		"panels", chart.Grid,
		"elapsed", time.Since(start),
	)
	return Result{
		State:     s,
		Params:    encoded,
		Share:     params.QueryString(encoded),
		Chart:     chart,
		Downloads: s.DownloadsAvailable(),
		FileStem:  s.FileStem(),
	}
}

// Toggle returns raw with the scope flag switched to scope. The caller
// persists the new flag and runs a fresh pass with it. Leaving India drops
// the state list so it is not read back as World comparison overlays.
func Toggle(raw params.Values, prior, scope catalog.Scope) params.Values {
	flag := "true"
	if scope == catalog.ScopeIndia {
		flag = "false"
	}
	from := viewstate.ResolveScope(raw, prior)
	out := raw.Merge(params.Values{params.KeyWorld: {flag}})
	if from == catalog.ScopeIndia && scope == catalog.ScopeWorld {
		delete(out, params.KeyState)
	}
	return out
}
