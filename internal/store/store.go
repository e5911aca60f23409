// Package store provides the indicator lookup capability the dashboard
// queries: a series of (year, value) points per entity and metric.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an entity has no series for a metric.
var ErrNotFound = errors.New("series not found")

// Kind distinguishes the two entity tables.
type Kind string

const (
	KindCountry Kind = "country"
	KindState   Kind = "state"
)

// ParseKind accepts "country"/"countries" and "state"/"states".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "country", "countries":
		return KindCountry, nil
	case "state", "states":
		return KindState, nil
	}
	return "", fmt.Errorf("invalid kind %q (use country or state)", s)
}

// Point is one observation; X is the year.
type Point struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// Series is ordered by ascending X.
type Series []Point

// Window bounds a lookup to an inclusive year range. A nil window means the
// full history.
type Window struct {
	Start int
	End   int
}

// Request identifies one lookup.
type Request struct {
	Kind   Kind
	Entity string
	Metric string
	Window *Window
}

func (r Request) String() string {
	if r.Window == nil {
		return fmt.Sprintf("%s/%s/%s", r.Kind, r.Entity, r.Metric)
	}
	return fmt.Sprintf("%s/%s/%s[%d-%d]", r.Kind, r.Entity, r.Metric, r.Window.Start, r.Window.End)
}

// Store looks up series. Implementations return ErrNotFound (possibly
// wrapped) or an empty series when nothing matches.
type Store interface {
	Lookup(ctx context.Context, req Request) (Series, error)
}

// Lister is implemented by stores that can enumerate their entities.
type Lister interface {
	Entities(ctx context.Context, kind Kind) ([]string, error)
}

// Clip returns the points of s that fall inside w.
func Clip(s Series, w *Window) Series {
	if w == nil {
		return s
	}
	out := make(Series, 0, len(s))
	for _, p := range s {
		if p.X >= w.Start && p.X <= w.End {
			out = append(out, p)
		}
	}
	return out
}
