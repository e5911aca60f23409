// Package metrics exposes Prometheus counters for reconciliation passes and
// store lookups.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/KaramelBytes/hdiview/internal/store"
)

var (
	// passesTotal counts reconciliation passes by resolved scope.
	passesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hdiview_passes_total",
		Help: "Reconciliation passes by resolved scope",
	}, []string{"scope"})

	// lookupsTotal counts store lookups.
	// Labels: "hit", "miss", "error"
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hdiview_lookups_total",
		Help: "Store lookups by result",
	}, []string{"result"})

	panelsEmitted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hdiview_panels_emitted",
		Help:    "Panels emitted per pass",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hdiview_exports_total",
		Help: "Download artifacts served by format",
	}, []string{"format"})
)

// ObservePass records one completed pass.
func ObservePass(scope string, panels int) {
	passesTotal.WithLabelValues(scope).Inc()
	panelsEmitted.Observe(float64(panels))
}

// ObserveExport records one served download.
func ObserveExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

// Store wraps a store and counts lookup outcomes.
type Store struct {
	next store.Store
}

// Instrument wraps st.
func Instrument(st store.Store) *Store { return &Store{next: st} }

// Lookup delegates and records hit, miss or error.
func (s *Store) Lookup(ctx context.Context, req store.Request) (store.Series, error) {
	series, err := s.next.Lookup(ctx, req)
	switch {
	case errors.Is(err, store.ErrNotFound):
		lookupsTotal.WithLabelValues("miss").Inc()
	case err != nil:
		lookupsTotal.WithLabelValues("error").Inc()
	case len(series) == 0:
		lookupsTotal.WithLabelValues("miss").Inc()
	default:
		lookupsTotal.WithLabelValues("hit").Inc()
	}
	return series, err
}
