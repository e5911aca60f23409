// Package catalog holds the fixed metric and entity catalogs the view state
// is validated against.
package catalog

import (
	"fmt"
	"strings"
)

// Scope selects the comparison universe. The zero value is World.
type Scope int

const (
	ScopeWorld Scope = iota
	ScopeIndia
)

func (s Scope) String() string {
	if s == ScopeIndia {
		return "india"
	}
	return "world"
}

// MarshalText renders the scope as its name.
func (s Scope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText accepts anything ParseScope does.
func (s *Scope) UnmarshalText(b []byte) error {
	sc, ok := ParseScope(string(b))
	if !ok {
		return fmt.Errorf("unknown scope %q", b)
	}
	*s = sc
	return nil
}

// ParseScope accepts "world"/"india" (any case) and "true"/"false" as used by
// the world parameter.
func ParseScope(s string) (Scope, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "world", "true":
		return ScopeWorld, true
	case "india", "false":
		return ScopeIndia, true
	}
	return ScopeWorld, false
}

// Category groups metrics; gender filters only apply to education metrics.
type Category string

const (
	CategoryEducation   Category = "education"
	CategoryDevelopment Category = "development"
	CategoryTime        Category = "time"
)

// Metric is a selectable indicator. Key is the short form written to
// parameters, Name the display name used for lookups and labels.
type Metric struct {
	Key      string
	Name     string
	Category Category
}

var (
	Year = Metric{Key: "Year", Name: "Year", Category: CategoryTime}

	Primary         = Metric{Key: "Primary", Name: "Primary Education", Category: CategoryEducation}
	LowerSecondary  = Metric{Key: "LowerSecondary", Name: "Lower Secondary Education", Category: CategoryEducation}
	HigherSecondary = Metric{Key: "HigherSecondary", Name: "Higher Secondary Education", Category: CategoryEducation}
	College         = Metric{Key: "College", Name: "College Completion", Category: CategoryEducation}
	Literacy        = Metric{Key: "Literacy", Name: "Literacy Rate", Category: CategoryEducation}

	LifeExpectancy = Metric{Key: "LifeExpectancy", Name: "Life Expectancy", Category: CategoryDevelopment}
	Fertility      = Metric{Key: "Fertility", Name: "Total Fertility Rate", Category: CategoryDevelopment}
	GDPPerCapita   = Metric{Key: "GDP", Name: "GDP per Capita", Category: CategoryDevelopment}
	HDI            = Metric{Key: "HDI", Name: "Human Development Index", Category: CategoryDevelopment}
)

var allMetrics = []Metric{
	Year, Primary, LowerSecondary, HigherSecondary, College, Literacy,
	LifeExpectancy, Fertility, GDPPerCapita, HDI,
}

// LookupMetric resolves a cleaned key or a display name to a Metric.
func LookupMetric(s string) (Metric, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Metric{}, false
	}
	for _, m := range allMetrics {
		if m.Key == s || m.Name == s {
			return m, true
		}
	}
	for _, m := range allMetrics {
		if strings.EqualFold(m.Key, s) || strings.EqualFold(m.Name, s) {
			return m, true
		}
	}
	return Metric{}, false
}

// IsEducation reports whether the named metric belongs to the education
// category.
func IsEducation(name string) bool {
	m, ok := LookupMetric(name)
	return ok && m.Category == CategoryEducation
}

// Gender is one of the gender filters applicable to education metrics.
type Gender string

const (
	GenderBoth   Gender = "Both"
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Genders lists the filters in display order.
var Genders = []Gender{GenderBoth, GenderMale, GenderFemale}

// ParseGender matches a gender filter case-insensitively.
func ParseGender(s string) (Gender, bool) {
	for _, g := range Genders {
		if strings.EqualFold(string(g), strings.TrimSpace(s)) {
			return g, true
		}
	}
	return "", false
}

// Time range bounds shared by every scope.
const (
	MinYear = 1960
	MaxYear = 2020
)

// DataNotes is the explanatory text shown next to the charts.
const DataNotes = `- Education data represents the percentage of population aged 20-24 who have completed:
    - Primary Education: 6 years of education
    - Lower Secondary Education: 9 years of education
    - Higher Secondary Education: 12 years of education
    - College Completion: 16 years of education
- Data sources may vary by country and indicator
- Some indicators may not be available for all years or regions`
