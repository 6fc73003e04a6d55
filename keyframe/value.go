package keyframe

import (
	"math"
	"strconv"
	"strings"

	pstrconv "github.com/tdewolff/parse/v2/strconv"
)

// Value is a single property value: either a number with an optional unit
// ("12px", "0.5", "90deg", "50%") or an opaque token ("none", "#ff0000").
// The zero Value is the empty token.
type Value struct {
	num     float64
	unit    string
	raw     string
	numeric bool
}

// Number returns a numeric Value.
func Number(f float64, unit string) Value {
	return Value{num: f, unit: unit, numeric: true}
}

// Token returns an opaque Value that only ever switches discretely.
func Token(s string) Value {
	return Value{raw: s}
}

// ParseValue splits s into a magnitude and a unit. Anything that is not a
// finite number followed by an optional alphabetic or percent unit becomes a
// token, including values with several components such as "10px 20px".
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	f, n := pstrconv.ParseFloat([]byte(s))
	if n == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return Token(s)
	}
	unit := s[n:]
	if !isUnit(unit) {
		return Token(s)
	}
	return Value{num: f, unit: unit, raw: s, numeric: true}
}

func isUnit(s string) bool {
	if s == "%" {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// IsNumeric reports whether v has a magnitude.
func (v Value) IsNumeric() bool { return v.numeric }

// Float returns the magnitude of a numeric value and false for tokens.
func (v Value) Float() (float64, bool) { return v.num, v.numeric }

// Unit returns the unit of a numeric value, or "".
func (v Value) Unit() string { return v.unit }

// IsZero reports whether v is the empty token.
func (v Value) IsZero() bool { return !v.numeric && v.raw == "" }

// String returns the value as it was written, or formats a computed number
// with its unit.
func (v Value) String() string {
	if v.raw != "" || !v.numeric {
		return v.raw
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64) + v.unit
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Value) UnmarshalText(b []byte) error {
	*v = ParseValue(string(b))
	return nil
}

// Lerp blends two values at t. Two numbers whose units agree, or where only
// one side has a unit, interpolate their magnitude and carry a's unit, which
// may be none. Everything else switches from a to b at t = 0.5.
// At t <= 0 and t >= 1 the endpoints are returned unchanged.
func Lerp(a, b Value, t float64) Value {
	if !(t > 0) {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.numeric && b.numeric && (a.unit == b.unit || a.unit == "" || b.unit == "") {
		return Number(a.num+(b.num-a.num)*t, a.unit)
	}
	if t < 0.5 {
		return a
	}
	return b
}

// Props maps property names to values.
type Props map[string]Value

// P builds Props from name/value string pairs. A trailing unpaired name is
// ignored.
//
//	keyframe.P("opacity", "0", "x", "10px")
func P(pairs ...string) Props {
	p := make(Props, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		p[pairs[i]] = ParseValue(pairs[i+1])
	}
	return p
}

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	c := make(Props, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Strings returns p rendered as strings.
func (p Props) Strings() map[string]string {
	m := make(map[string]string, len(p))
	for k, v := range p {
		m[k] = v.String()
	}
	return m
}
