package catalog

import "strings"

// Catalog bundles the per-scope metric lists with the known entity names.
// Entity lists may be replaced with the names found in a data store.
type Catalog struct {
	Countries []string
	States    []string

	countrySet map[string]string
	stateSet   map[string]string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(defaultCountries, defaultStates)
}

// New builds a catalog over the given entity names. The scope defaults
// (India, Kerala) are always accepted even if missing from the lists.
func New(countries, states []string) *Catalog {
	c := &Catalog{
		Countries:  dedupe(countries),
		States:     dedupe(states),
		countrySet: map[string]string{},
		stateSet:   map[string]string{},
	}
	for _, n := range append(c.Countries, DefaultCountry) {
		c.countrySet[strings.ToLower(n)] = n
	}
	for _, n := range append(c.States, DefaultState) {
		c.stateSet[strings.ToLower(n)] = n
	}
	return c
}

const (
	DefaultCountry = "India"
	DefaultState   = "Kerala"
)

var (
	worldMetrics = []Metric{Primary, LowerSecondary, HigherSecondary, College, HDI}
	indiaMetrics = []Metric{Primary, LowerSecondary, HigherSecondary, Literacy}

	worldOther = []Metric{LifeExpectancy, Fertility, GDPPerCapita, HDI}
	indiaOther = []Metric{LifeExpectancy, Fertility, GDPPerCapita}
)

// Metrics returns the y-axis catalog for a scope. The first entry is the
// fallback for unknown selections.
func Metrics(s Scope) []Metric {
	if s == ScopeIndia {
		return indiaMetrics
	}
	return worldMetrics
}

// OtherIndicators returns the secondary indicator catalog for a scope.
func OtherIndicators(s Scope) []Metric {
	if s == ScopeIndia {
		return indiaOther
	}
	return worldOther
}

// InScope reports whether m is part of the scope's y-axis catalog.
func InScope(s Scope, m Metric) bool {
	for _, c := range Metrics(s) {
		if c.Key == m.Key {
			return true
		}
	}
	return false
}

// DefaultEntities returns the entity list used when none is selected.
func DefaultEntities(s Scope) []string {
	if s == ScopeIndia {
		return []string{DefaultState}
	}
	return []string{DefaultCountry}
}

// Country returns the canonical spelling of a known country.
func (c *Catalog) Country(name string) (string, bool) {
	n, ok := c.countrySet[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// State returns the canonical spelling of a known Indian state.
func (c *Catalog) State(name string) (string, bool) {
	n, ok := c.stateSet[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
