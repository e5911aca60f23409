package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/params"
)

func resolve(v params.Values) ViewState {
	return Resolve(v, catalog.ScopeWorld, catalog.Default())
}

func TestResolve_WorldScenario(t *testing.T) {
	s := resolve(params.Values{
		"world":  {"true"},
		"c":      {"India", "Brazil"},
		"y":      {"Primary"},
		"gender": {},
	})
	assert.Equal(t, catalog.ScopeWorld, s.Scope)
	assert.Equal(t, []string{"India", "Brazil"}, s.Entities)
	assert.Equal(t, "Primary Education", s.YMetric.Name)
	assert.Equal(t, []catalog.Gender{catalog.GenderFemale}, s.GenderFilters)
	assert.Equal(t, catalog.Year, s.XMetric)
	assert.Equal(t, DefaultTimeRange(), s.TimeRange)
	assert.Empty(t, s.ComparisonStates)
}

func TestResolve_IndiaScenario(t *testing.T) {
	s := resolve(params.Values{"world": {"false"}, "s": {}})
	assert.Equal(t, catalog.ScopeIndia, s.Scope)
	assert.Equal(t, []string{"Kerala"}, s.Entities)
	assert.Empty(t, s.ComparisonStates)
	assert.True(t, s.GenderApplies())
	assert.Equal(t, []catalog.Gender{catalog.GenderFemale}, s.GenderFilters)
}

func TestResolveScope(t *testing.T) {
	assert.Equal(t, catalog.ScopeIndia, ResolveScope(params.Values{}, catalog.ScopeIndia))
	assert.Equal(t, catalog.ScopeWorld, ResolveScope(params.Values{}, catalog.ScopeWorld))
	assert.Equal(t, catalog.ScopeWorld, ResolveScope(params.Values{"world": {"true"}}, catalog.ScopeIndia))
	// only the exact lowercase literal selects World
	assert.Equal(t, catalog.ScopeIndia, ResolveScope(params.Values{"world": {"TRUE"}}, catalog.ScopeWorld))
	assert.Equal(t, catalog.ScopeIndia, ResolveScope(params.Values{"world": {}}, catalog.ScopeWorld))
}

func TestResolve_YMetricOutsideCatalogFallsBack(t *testing.T) {
	cases := []struct {
		scope catalog.Scope
		y     []string
	}{
		{catalog.ScopeWorld, []string{"Nonsense"}},
		{catalog.ScopeWorld, []string{"Literacy"}},
		{catalog.ScopeWorld, nil},
		{catalog.ScopeIndia, []string{"College"}},
		{catalog.ScopeIndia, []string{"HDI"}},
		{catalog.ScopeIndia, []string{""}},
	}
	for _, tc := range cases {
		world := "true"
		if tc.scope == catalog.ScopeIndia {
			world = "false"
		}
		v := params.Values{"world": {world}}
		if tc.y != nil {
			v["y"] = tc.y
		}
		s := resolve(v)
		assert.Equal(t, catalog.Metrics(tc.scope)[0], s.YMetric, "%v %v", tc.scope, tc.y)
	}
}

func TestResolve_MalformedTimeRangeResetsBoth(t *testing.T) {
	cases := []struct{ sy, ey []string }{
		{[]string{"abc"}, []string{"2000"}},
		{[]string{"1990"}, []string{"20x0"}},
		{[]string{"2010"}, []string{"2000"}},
		{[]string{"1950"}, []string{"2000"}},
		{[]string{"1990"}, []string{"2030"}},
		{[]string{"1990.5"}, []string{"2000"}},
	}
	for _, tc := range cases {
		s := resolve(params.Values{"sy": tc.sy, "ey": tc.ey})
		assert.Equal(t, TimeRange{Start: 1960, End: 2020}, s.TimeRange, "%v-%v", tc.sy, tc.ey)
	}
}

func TestResolve_TimeRange(t *testing.T) {
	s := resolve(params.Values{"sy": {"1990"}, "ey": {"2005"}})
	assert.Equal(t, TimeRange{Start: 1990, End: 2005}, s.TimeRange)

	s = resolve(params.Values{"ey": {"1999"}})
	assert.Equal(t, TimeRange{Start: 1960, End: 1999}, s.TimeRange)
}

func TestResolve_GenderOnlyDefaultsWhenApplicable(t *testing.T) {
	s := resolve(params.Values{"y": {"HDI"}})
	assert.False(t, s.GenderApplies())
	assert.Empty(t, s.GenderFilters)
	assert.Equal(t, []Label{{Metric: "Human Development Index"}}, s.PrimaryLabels())

	s = resolve(params.Values{"y": {"HDI"}, "gender": {"Male"}})
	assert.Equal(t, []Label{{Metric: "Human Development Index"}}, s.PrimaryLabels())

	s = resolve(params.Values{"gender": {"female", "Both", "other", "Male"}})
	assert.Equal(t, []catalog.Gender{catalog.GenderBoth, catalog.GenderMale, catalog.GenderFemale}, s.GenderFilters)
	assert.Equal(t, []Label{
		{Metric: "Both Primary Education", Group: "Both"},
		{Metric: "Male Primary Education", Group: "Male"},
		{Metric: "Female Primary Education", Group: "Female"},
	}, s.PrimaryLabels())
}

func TestResolve_EntitiesAreCatalogScoped(t *testing.T) {
	s := resolve(params.Values{
		"c": {"Kerala", "brazil", "Brazil", "Atlantis"},
		"s": {"Goa", "Chile", "Kerala"},
	})
	assert.Equal(t, []string{"Brazil"}, s.Entities)
	assert.Equal(t, []string{"Goa", "Kerala"}, s.ComparisonStates)

	s = resolve(params.Values{"world": {"false"}, "c": {"Brazil"}, "s": {"Brazil", "Goa"}})
	assert.Equal(t, []string{"Goa"}, s.Entities)
	assert.Empty(t, s.ComparisonStates)

	s = resolve(params.Values{"c": {"Atlantis"}})
	assert.Equal(t, []string{"India"}, s.Entities)
}

func TestResolve_OtherIndicatorsAndLayout(t *testing.T) {
	s := resolve(params.Values{
		"other":    {"Human Development Index", "Life Expectancy", "Bogus"},
		"vertical": {"TRUE"},
	})
	require.Len(t, s.OtherIndicators, 2)
	assert.Equal(t, catalog.LifeExpectancy, s.OtherIndicators[0])
	assert.Equal(t, catalog.HDI, s.OtherIndicators[1])
	assert.Equal(t, Vertical, s.Layout)

	s = resolve(params.Values{"world": {"false"}, "other": {"Human Development Index"}, "vertical": {"yes"}})
	assert.Empty(t, s.OtherIndicators)
	assert.Equal(t, Horizontal, s.Layout)
}

func TestEncodeRoundTrip(t *testing.T) {
	inputs := []params.Values{
		{},
		{"world": {"true"}, "c": {"India", "Brazil"}, "y": {"Primary"}, "gender": {}},
		{"world": {"false"}, "s": {}},
		{"world": {"false"}, "s": {"Goa", "Kerala"}, "y": {"Literacy"}, "gender": {"Male", "Both"}, "other": {"GDP per Capita"}},
		{"c": {"Chile"}, "s": {"Goa"}, "y": {"HDI"}, "gender": {"Male"}, "sy": {"1980"}, "ey": {"1990"}, "vertical": {"true"}},
		{"y": {"HDI"}, "sy": {"bad"}, "other": {"Life Expectancy", "Human Development Index"}},
	}
	for _, in := range inputs {
		s := resolve(in)
		again := Resolve(params.Decode(s.Encode()), catalog.ScopeIndia, catalog.Default())
		assert.Equal(t, s, again, "input %v", in)
	}
}

func TestEncode(t *testing.T) {
	s := resolve(params.Values{"world": {"false"}, "s": {"Goa"}})
	enc := s.Encode()
	assert.Equal(t, "false", enc["world"])
	assert.Equal(t, "Goa", enc["s"])
	assert.Equal(t, "", enc["c"])
	assert.Equal(t, "Year", enc["x"])
	assert.Equal(t, "Primary", enc["y"])
	assert.Equal(t, "1960", enc["sy"])
	assert.Equal(t, "2020", enc["ey"])
	assert.Equal(t, "false", enc["vertical"])
	assert.Len(t, enc, len(params.Keys))
}

func TestDownloadHelpers(t *testing.T) {
	s := resolve(params.Values{"gender": {"Male", "Female"}})
	assert.Equal(t, "Male Primary Education", s.DownloadLabel())
	assert.Equal(t, "Yea_Pri", s.FileStem())
	assert.True(t, s.DownloadsAvailable())

	s = resolve(params.Values{"y": {"HDI"}, "gender": {"Male"}})
	assert.Equal(t, "Human Development Index", s.DownloadLabel())
	assert.Equal(t, "Yea_Hum", s.FileStem())

	s = resolve(params.Values{"world": {"false"}})
	assert.False(t, s.DownloadsAvailable())
}
