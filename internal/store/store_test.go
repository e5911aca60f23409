package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/hdiview/internal/dataset"
)

func fixture() *dataset.Table {
	return &dataset.Table{Observations: []dataset.Observation{
		{Entity: "India", Indicator: "Female Primary Education", Year: 2000, Value: 50},
		{Entity: "India", Indicator: "Female Primary Education", Year: 1960, Value: 10},
		{Entity: "India", Indicator: "Female Primary Education", Year: 1990, Value: 40},
		{Entity: "Brazil", Indicator: "Life Expectancy", Year: 2010, Value: 73.1},
		{Entity: "India", Indicator: "Female Primary Education", Year: 1990, Value: 41},
	}}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.AddTable(KindCountry, fixture())

	s, err := m.Lookup(ctx, Request{Kind: KindCountry, Entity: "india", Metric: "female primary education"})
	require.NoError(t, err)
	assert.Equal(t, Series{{1960, 10}, {1990, 41}, {2000, 50}}, s)

	s, err = m.Lookup(ctx, Request{Kind: KindCountry, Entity: "India", Metric: "Female Primary Education", Window: &Window{Start: 1990, End: 2000}})
	require.NoError(t, err)
	assert.Equal(t, Series{{1990, 41}, {2000, 50}}, s)

	s, err = m.Lookup(ctx, Request{Kind: KindCountry, Entity: "India", Metric: "Female Primary Education", Window: &Window{Start: 2001, End: 2020}})
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = m.Lookup(ctx, Request{Kind: KindState, Entity: "India", Metric: "Female Primary Education"})
	assert.True(t, errors.Is(err, ErrNotFound))

	names, err := m.Entities(ctx, KindCountry)
	require.NoError(t, err)
	assert.Equal(t, []string{"India", "Brazil"}, names)
}

func TestMemoryStoreLookupReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.Add(KindState, "Goa", "Literacy Rate", 2001, 82)
	s, err := m.Lookup(ctx, Request{Kind: KindState, Entity: "Goa", Metric: "Literacy Rate"})
	require.NoError(t, err)
	s[0].Y = 0
	again, _ := m.Lookup(ctx, Request{Kind: KindState, Entity: "Goa", Metric: "Literacy Rate"})
	assert.Equal(t, 82.0, again[0].Y)
}

func TestSQLiteStoreMatchesMemory(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "hdi.db"))
	require.NoError(t, err)
	defer db.Close()

	n, err := db.Import(ctx, KindCountry, fixture())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	mem := NewMemoryStore()
	mem.AddTable(KindCountry, fixture())

	reqs := []Request{
		{Kind: KindCountry, Entity: "India", Metric: "Female Primary Education"},
		{Kind: KindCountry, Entity: "INDIA", Metric: "Female Primary Education", Window: &Window{Start: 1961, End: 2000}},
		{Kind: KindCountry, Entity: "Brazil", Metric: "Life Expectancy"},
	}
	for _, r := range reqs {
		want, err := mem.Lookup(ctx, r)
		require.NoError(t, err)
		got, err := db.Lookup(ctx, r)
		require.NoError(t, err, r.String())
		assert.Equal(t, want, got, r.String())
	}

	_, err = db.Lookup(ctx, Request{Kind: KindState, Entity: "Goa", Metric: "Literacy Rate"})
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := db.Entities(ctx, KindCountry)
	require.NoError(t, err)
	assert.Equal(t, []string{"India", "Brazil"}, names)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("States")
	require.NoError(t, err)
	assert.Equal(t, KindState, k)
	_, err = ParseKind("planet")
	assert.Error(t, err)
}

func TestClip(t *testing.T) {
	s := Series{{1990, 1}, {2000, 2}, {2010, 3}}
	assert.Equal(t, s, Clip(s, nil))
	assert.Equal(t, Series{{2000, 2}}, Clip(s, &Window{Start: 1995, End: 2005}))
}
