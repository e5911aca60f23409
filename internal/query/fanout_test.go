package query

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/params"
	"github.com/KaramelBytes/hdiview/internal/store"
	"github.com/KaramelBytes/hdiview/internal/viewstate"
)

func state(v params.Values) viewstate.ViewState {
	return viewstate.Resolve(v, catalog.ScopeWorld, catalog.Default())
}

func TestFanout_WorldWithGenderAndOverlays(t *testing.T) {
	s := state(params.Values{
		"c":      {"India", "Brazil"},
		"s":      {"Kerala"},
		"gender": {"Male", "Female"},
		"other":  {"Life Expectancy"},
		"sy":     {"1990"},
		"ey":     {"2000"},
	})
	panels := Fanout(s)
	require.Len(t, panels, 2)

	primary := panels[0]
	assert.Equal(t, "Primary Education", primary.Metric)
	assert.True(t, primary.OverlayRequested)
	w := &store.Window{Start: 1990, End: 2000}
	assert.Equal(t, []Query{
		{Entity: "Kerala", Kind: store.KindState, Metric: "Male Primary Education", Group: "Male", Overlay: true},
		{Entity: "Kerala", Kind: store.KindState, Metric: "Female Primary Education", Group: "Female", Overlay: true},
		{Entity: "India", Kind: store.KindCountry, Metric: "Male Primary Education", Group: "Male", Window: w},
		{Entity: "India", Kind: store.KindCountry, Metric: "Female Primary Education", Group: "Female", Window: w},
		{Entity: "Brazil", Kind: store.KindCountry, Metric: "Male Primary Education", Group: "Male", Window: w},
		{Entity: "Brazil", Kind: store.KindCountry, Metric: "Female Primary Education", Group: "Female", Window: w},
	}, primary.Queries)

	// secondary indicators are never split by gender
	other := panels[1]
	assert.Equal(t, "Life Expectancy", other.Metric)
	assert.Equal(t, []Query{
		{Entity: "Kerala", Kind: store.KindState, Metric: "Life Expectancy", Overlay: true},
		{Entity: "India", Kind: store.KindCountry, Metric: "Life Expectancy", Window: w},
		{Entity: "Brazil", Kind: store.KindCountry, Metric: "Life Expectancy", Window: w},
	}, other.Queries)

	assert.Len(t, Flatten(panels), 9)
}

func TestFanout_NonEducationMetricIsUngrouped(t *testing.T) {
	s := state(params.Values{"y": {"HDI"}, "gender": {"Male", "Female"}})
	panels := Fanout(s)
	require.Len(t, panels, 1)
	assert.False(t, panels[0].OverlayRequested)
	require.Len(t, panels[0].Queries, 1)
	q := panels[0].Queries[0]
	assert.Equal(t, "Human Development Index", q.Metric)
	assert.Equal(t, "", q.Group)
	assert.Equal(t, "India", q.Entity)
}

func TestFanout_IndiaIsUnbounded(t *testing.T) {
	s := state(params.Values{"world": {"false"}, "s": {"Goa", "Kerala"}, "sy": {"2000"}, "ey": {"2010"}, "other": {"GDP per Capita"}})
	for _, p := range Fanout(s) {
		for _, q := range p.Queries {
			assert.Equal(t, store.KindState, q.Kind)
			assert.False(t, q.Overlay)
			assert.Nil(t, q.Window)
		}
	}
	assert.Len(t, Flatten(Fanout(s)), 4)
}

type stubStore struct {
	data map[string]store.Series
	fail map[string]error
}

func (s stubStore) Lookup(_ context.Context, r store.Request) (store.Series, error) {
	if err, ok := s.fail[r.Entity]; ok {
		return nil, err
	}
	series, ok := s.data[r.Entity+"/"+r.Metric]
	if !ok {
		return nil, store.ErrNotFound
	}
	return series, nil
}

func TestExecute_DropsAbsentEmptyAndFailed(t *testing.T) {
	st := stubStore{
		data: map[string]store.Series{
			"India/HDI": {{X: 2000, Y: 0.5}},
			"Chile/HDI": {},
		},
		fail: map[string]error{"Peru": errors.New("disk on fire")},
	}
	qs := []Query{
		{Entity: "India", Metric: "HDI"},
		{Entity: "Chile", Metric: "HDI"},
		{Entity: "Brazil", Metric: "HDI"},
		{Entity: "Peru", Metric: "HDI"},
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	res := Execute(context.Background(), st, qs, logger)
	require.Len(t, res, 1)
	assert.Equal(t, "India", res[0].Entity)
	assert.Contains(t, buf.String(), "disk on fire")
	assert.NotContains(t, buf.String(), "Brazil")
}
