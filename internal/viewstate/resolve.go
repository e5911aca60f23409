package viewstate

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/params"
)

// Resolve reconciles decoded parameters into a complete ViewState. prior is
// the scope persisted by the host from the previous pass; hosts without
// persisted state pass catalog.ScopeWorld. Malformed input never fails: each
// field falls back to its documented default.
func Resolve(v params.Values, prior catalog.Scope, cat *catalog.Catalog) ViewState {
	if cat == nil {
		cat = catalog.Default()
	}
	s := ViewState{
		Scope:   ResolveScope(v, prior),
		XMetric: catalog.Year,
	}

	s.YMetric = ResolveYMetric(s.Scope, first(v, params.KeyY))
	s.GenderFilters = parseGenders(v.List(params.KeyGender))
	if s.GenderApplies() && len(s.GenderFilters) == 0 {
		s.GenderFilters = []catalog.Gender{catalog.GenderFemale}
	}

	if s.Scope == catalog.ScopeWorld {
		s.Entities = filterEntities(v.List(params.KeyCountry), cat.Country)
		s.ComparisonStates = filterEntities(v.List(params.KeyState), cat.State)
	} else {
		s.Entities = filterEntities(v.List(params.KeyState), cat.State)
		s.ComparisonStates = []string{}
	}
	if len(s.Entities) == 0 {
		s.Entities = catalog.DefaultEntities(s.Scope)
	}

	if r, ok := ParseTimeRange(v.List(params.KeyStart), v.List(params.KeyEnd)); ok {
		s.TimeRange = r
	} else {
		s.TimeRange = DefaultTimeRange()
	}

	s.OtherIndicators = parseIndicators(s.Scope, v.List(params.KeyOther))
	if vert, ok := v.First(params.KeyVertical); ok && strings.EqualFold(vert, "true") {
		s.Layout = Vertical
	}
	return s
}

// HeldCountries returns the known countries named in v's country key,
// whatever the scope. India passes keep them so a switch back to World
// restores the country selection.
func HeldCountries(v params.Values, cat *catalog.Catalog) []string {
	if cat == nil {
		cat = catalog.Default()
	}
	return filterEntities(v.List(params.KeyCountry), cat.Country)
}

// ResolveScope reads the world flag, keeping prior when it is absent.
func ResolveScope(v params.Values, prior catalog.Scope) catalog.Scope {
	if !v.Has(params.KeyWorld) {
		return prior
	}
	if w, _ := v.First(params.KeyWorld); w == "true" {
		return catalog.ScopeWorld
	}
	return catalog.ScopeIndia
}

// ResolveYMetric returns the requested metric when it belongs to the scope's
// catalog, the catalog's first entry otherwise.
func ResolveYMetric(scope catalog.Scope, requested string) catalog.Metric {
	if m, ok := ValidateMetric(scope, requested); ok {
		return m
	}
	return catalog.Metrics(scope)[0]
}

// ValidateMetric looks up a metric key or display name within a scope.
func ValidateMetric(scope catalog.Scope, requested string) (catalog.Metric, bool) {
	m, ok := catalog.LookupMetric(requested)
	if !ok || !catalog.InScope(scope, m) {
		return catalog.Metric{}, false
	}
	return m, true
}

// ParseTimeRange validates a start/end year pair. An absent bound takes its
// default. Any unparseable, out-of-bounds or inverted pair is rejected as a
// whole; a single valid bound is never kept on its own.
func ParseTimeRange(start, end []string) (TimeRange, bool) {
	r := DefaultTimeRange()
	if len(start) > 0 {
		y, err := strconv.Atoi(strings.TrimSpace(start[0]))
		if err != nil {
			return TimeRange{}, false
		}
		r.Start = y
	}
	if len(end) > 0 {
		y, err := strconv.Atoi(strings.TrimSpace(end[0]))
		if err != nil {
			return TimeRange{}, false
		}
		r.End = y
	}
	if r.Start < catalog.MinYear || r.End > catalog.MaxYear || r.Start > r.End {
		return TimeRange{}, false
	}
	return r, true
}

func first(v params.Values, key string) string {
	s, _ := v.First(key)
	return s
}

func parseGenders(in []string) []catalog.Gender {
	selected := map[catalog.Gender]bool{}
	for _, s := range in {
		if g, ok := catalog.ParseGender(s); ok {
			selected[g] = true
		}
	}
	out := []catalog.Gender{}
	for _, g := range catalog.Genders {
		if selected[g] {
			out = append(out, g)
		}
	}
	return out
}

func parseIndicators(scope catalog.Scope, in []string) []catalog.Metric {
	selected := map[string]bool{}
	for _, s := range in {
		if m, ok := catalog.LookupMetric(s); ok {
			selected[m.Key] = true
		}
	}
	out := []catalog.Metric{}
	for _, m := range catalog.OtherIndicators(scope) {
		if selected[m.Key] {
			out = append(out, m)
		}
	}
	return out
}

func filterEntities(in []string, known func(string) (string, bool)) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range in {
		n, ok := known(s)
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
