// Package params converts between the flat, comma-delimited parameter map a
// view is shared as and typed lists.
package params

import (
	"net/url"
	"sort"
	"strings"
)

// Parameter keys understood by the resolver.
const (
	KeyWorld    = "world"
	KeyX        = "x"
	KeyY        = "y"
	KeyGender   = "gender"
	KeyOther    = "other"
	KeyCountry  = "c"
	KeyState    = "s"
	KeyStart    = "sy"
	KeyEnd      = "ey"
	KeyVertical = "vertical"
)

// Keys lists every parameter key in canonical order.
var Keys = []string{KeyWorld, KeyX, KeyY, KeyGender, KeyOther, KeyCountry, KeyState, KeyStart, KeyEnd, KeyVertical}

// Values is a decoded parameter map. A key present with an empty value maps
// to an empty, non-nil list.
type Values map[string][]string

// Decode splits each raw value on ','. Items are trimmed and empty items are
// dropped. Decoding never fails; validation is left to the resolver.
func Decode(raw map[string]string) Values {
	v := make(Values, len(raw))
	for k, s := range raw {
		v[k] = split(s)
	}
	return v
}

// DecodeQuery decodes an HTTP query. Repeated keys are joined before
// splitting, so ?c=India&c=Brazil and ?c=India,Brazil are equivalent.
func DecodeQuery(q url.Values) Values {
	raw := make(map[string]string, len(q))
	for k, vs := range q {
		raw[k] = strings.Join(vs, ",")
	}
	return Decode(raw)
}

// ParseAssignments decodes key=value arguments as given on a command line.
// Arguments without '=' are ignored.
func ParseAssignments(args []string) Values {
	raw := map[string]string{}
	for _, a := range args {
		k, val, ok := strings.Cut(a, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if prev, seen := raw[k]; seen && prev != "" {
			val = prev + "," + val
		}
		raw[k] = val
	}
	return Decode(raw)
}

func split(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether key was present in the input, even if empty.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// List returns the decoded items for key; nil when absent.
func (v Values) List(key string) []string { return v[key] }

// First returns the first item for key and whether one exists.
func (v Values) First(key string) (string, bool) {
	l := v[key]
	if len(l) == 0 {
		return "", false
	}
	return l[0], true
}

// Merge returns a copy of v with keys from over replacing those in v.
func (v Values) Merge(over Values) Values {
	out := make(Values, len(v)+len(over))
	for k, l := range v {
		out[k] = l
	}
	for k, l := range over {
		out[k] = l
	}
	return out
}

// Join re-flattens a decoded map into raw comma-joined values.
func (v Values) Join() map[string]string {
	raw := make(map[string]string, len(v))
	for k, l := range v {
		raw[k] = strings.Join(l, ",")
	}
	return raw
}

// QueryString renders a raw parameter map as a URL query with sorted keys,
// so identical states produce identical share links.
func QueryString(raw map[string]string) string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(raw[k]))
	}
	return b.String()
}
