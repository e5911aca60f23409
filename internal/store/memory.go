package store

import (
	"context"
	"sort"
	"strings"

	"github.com/KaramelBytes/hdiview/internal/dataset"
)

// MemoryStore keeps every series in memory, keyed case-insensitively by
// kind, entity and metric.
type MemoryStore struct {
	series map[string]Series
	names  map[Kind][]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: map[string]Series{}, names: map[Kind][]string{}}
}

func memKey(kind Kind, entity, metric string) string {
	return string(kind) + "\x00" + strings.ToLower(strings.TrimSpace(entity)) + "\x00" + strings.ToLower(strings.TrimSpace(metric))
}

// Add records one observation. A repeated year replaces the earlier value.
func (m *MemoryStore) Add(kind Kind, entity, metric string, year int, value float64) {
	k := memKey(kind, entity, metric)
	s, ok := m.series[k]
	if !ok {
		m.addName(kind, entity)
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].X >= year })
	switch {
	case i < len(s) && s[i].X == year:
		s[i].Y = value
	default:
		s = append(s, Point{})
		copy(s[i+1:], s[i:])
		s[i] = Point{X: year, Y: value}
	}
	m.series[k] = s
}

func (m *MemoryStore) addName(kind Kind, entity string) {
	entity = strings.TrimSpace(entity)
	for _, n := range m.names[kind] {
		if strings.EqualFold(n, entity) {
			return
		}
	}
	m.names[kind] = append(m.names[kind], entity)
}

// AddTable loads every observation of a dataset table.
func (m *MemoryStore) AddTable(kind Kind, t *dataset.Table) {
	for _, o := range t.Observations {
		m.Add(kind, o.Entity, o.Indicator, o.Year, o.Value)
	}
}

// Lookup returns a copy of the matching series clipped to the window.
func (m *MemoryStore) Lookup(_ context.Context, req Request) (Series, error) {
	s, ok := m.series[memKey(req.Kind, req.Entity, req.Metric)]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Window == nil {
		return append(Series(nil), s...), nil
	}
	return Clip(s, req.Window), nil
}

// Entities lists entity names of a kind in insertion order.
func (m *MemoryStore) Entities(_ context.Context, kind Kind) ([]string, error) {
	return append([]string(nil), m.names[kind]...), nil
}
