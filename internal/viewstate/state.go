// Package viewstate derives the canonical selection state of a view from a
// decoded parameter map and serializes it back.
package viewstate

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/params"
)

// Layout arranges chart panels side by side or stacked.
type Layout int

const (
	Horizontal Layout = iota
	Vertical
)

func (l Layout) String() string {
	if l == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// TimeRange is an inclusive year window.
type TimeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DefaultTimeRange covers every year the data set holds.
func DefaultTimeRange() TimeRange {
	return TimeRange{Start: catalog.MinYear, End: catalog.MaxYear}
}

// Contains reports whether year lies inside the window.
func (r TimeRange) Contains(year int) bool { return year >= r.Start && year <= r.End }

// ViewState is the reconciled selection. Every field is populated and
// consistent with Scope; consumers do not re-validate it.
type ViewState struct {
	Scope            catalog.Scope    `json:"scope"`
	YMetric          catalog.Metric   `json:"y_metric"`
	XMetric          catalog.Metric   `json:"x_metric"`
	GenderFilters    []catalog.Gender `json:"gender_filters"`
	OtherIndicators  []catalog.Metric `json:"other_indicators"`
	Entities         []string         `json:"entities"`
	ComparisonStates []string         `json:"comparison_states"`
	TimeRange        TimeRange        `json:"time_range"`
	Layout           Layout           `json:"layout"`
}

// GenderApplies reports whether gender filters expand the primary metric.
func (s ViewState) GenderApplies() bool {
	return s.Scope == catalog.ScopeIndia || s.YMetric.Category == catalog.CategoryEducation
}

// Label is a lookup label for the primary metric and the group it belongs to.
type Label struct {
	Metric string
	Group  string
}

// PrimaryLabels expands the y metric into one label per active gender
// filter, or a single ungrouped label when gender does not apply.
func (s ViewState) PrimaryLabels() []Label {
	if s.GenderApplies() && len(s.GenderFilters) > 0 {
		out := make([]Label, 0, len(s.GenderFilters))
		for _, g := range s.GenderFilters {
			out = append(out, Label{Metric: string(g) + " " + s.YMetric.Name, Group: string(g)})
		}
		return out
	}
	return []Label{{Metric: s.YMetric.Name}}
}

// DownloadLabel is the metric label exported to CSV: the first gender
// filter prefixed to education metrics, the plain name otherwise.
func (s ViewState) DownloadLabel() string {
	if s.YMetric.Category == catalog.CategoryEducation && len(s.GenderFilters) > 0 {
		return string(s.GenderFilters[0]) + " " + s.YMetric.Name
	}
	return s.YMetric.Name
}

// FileStem names download artifacts after the first three letters of each
// axis metric, e.g. "Yea_Pri".
func (s ViewState) FileStem() string {
	return prefix(s.XMetric.Name, 3) + "_" + prefix(s.YMetric.Name, 3)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// DownloadsAvailable reports whether the view has a country table to export.
func (s ViewState) DownloadsAvailable() bool {
	return s.Scope == catalog.ScopeWorld && len(s.Entities) > 0
}

// Encode serializes the state into the flat parameter map. Every key is
// written so a decoded copy resolves to the same state.
func (s ViewState) Encode() map[string]string {
	world := "true"
	countries, states := s.Entities, s.ComparisonStates
	if s.Scope == catalog.ScopeIndia {
		world = "false"
		countries, states = nil, s.Entities
	}
	genders := make([]string, len(s.GenderFilters))
	for i, g := range s.GenderFilters {
		genders[i] = string(g)
	}
	others := make([]string, len(s.OtherIndicators))
	for i, m := range s.OtherIndicators {
		others[i] = m.Name
	}
	return map[string]string{
		params.KeyWorld:    world,
		params.KeyX:        s.XMetric.Key,
		params.KeyY:        s.YMetric.Key,
		params.KeyGender:   strings.Join(genders, ","),
		params.KeyOther:    strings.Join(others, ","),
		params.KeyCountry:  strings.Join(countries, ","),
		params.KeyState:    strings.Join(states, ","),
		params.KeyStart:    strconv.Itoa(s.TimeRange.Start),
		params.KeyEnd:      strconv.Itoa(s.TimeRange.End),
		params.KeyVertical: strconv.FormatBool(s.Layout == Vertical),
	}
}
