// Package ease maps normalized progress through easing curves.
//
// Apply evaluates every kind in float64 so that f(0) = 0, f(1) = 1 and the
// curve never decreases on [0, 1]. Func hands out the matching
// [gween/ease] function for float32 tweens. Curves that overshoot (back,
// elastic, bounce) are not exposed.
//
// [gween/ease]: https://github.com/tanema/gween
package ease

import (
	"math"
	"strings"

	gease "github.com/tanema/gween/ease"
)

// Kind identifies an easing curve.
type Kind uint8

const (
	InOut      Kind = iota // quadratic ease-in-out; the default and fallback
	Linear                 // identity
	In                     // t²
	Out                    // 1 - (1-t)²
	InCubic                // t³
	OutCubic               // 1 - (1-t)³
	InOutCubic             // cubic ease-in-out
	InSine                 // 1 - cos(t·π/2)
	OutSine                // sin(t·π/2)
	InOutSine              // (1 - cos(t·π)) / 2
)

var names = [...]string{
	InOut:      "ease-in-out",
	Linear:     "linear",
	In:         "ease-in",
	Out:        "ease-out",
	InCubic:    "ease-in-cubic",
	OutCubic:   "ease-out-cubic",
	InOutCubic: "ease-in-out-cubic",
	InSine:     "ease-in-sine",
	OutSine:    "ease-out-sine",
	InOutSine:  "ease-in-out-sine",
}

var funcs = [...]gease.TweenFunc{
	InOut:      gease.InOutQuad,
	Linear:     gease.Linear,
	In:         gease.InQuad,
	Out:        gease.OutQuad,
	InCubic:    gease.InCubic,
	OutCubic:   gease.OutCubic,
	InOutCubic: gease.InOutCubic,
	InSine:     gease.InSine,
	OutSine:    gease.OutSine,
	InOutSine:  gease.InOutSine,
}

var curves = [...]func(t float64) float64{
	InOut: func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		u := 2 - 2*t
		return 1 - u*u/2
	},
	Linear: func(t float64) float64 { return t },
	In:     func(t float64) float64 { return t * t },
	Out: func(t float64) float64 {
		u := 1 - t
		return 1 - u*u
	},
	InCubic: func(t float64) float64 { return t * t * t },
	OutCubic: func(t float64) float64 {
		u := 1 - t
		return 1 - u*u*u
	},
	InOutCubic: func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := 2 - 2*t
		return 1 - u*u*u/2
	},
	InSine:    func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) },
	OutSine:   func(t float64) float64 { return math.Sin(t * math.Pi / 2) },
	InOutSine: func(t float64) float64 { return (1 - math.Cos(t*math.Pi)) / 2 },
}

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(names))
	for i := range names {
		out[i] = Kind(i)
	}
	return out
}

// String returns the keyword ParseKind accepts for k.
func (k Kind) String() string {
	if int(k) < len(names) {
		return names[k]
	}
	return names[InOut]
}

// Func returns the gween tween function for k. Unknown kinds map to InOut.
func (k Kind) Func() gease.TweenFunc {
	if int(k) < len(funcs) {
		return funcs[k]
	}
	return funcs[InOut]
}

// ParseKind resolves an easing keyword. Matching is case-insensitive and
// ignores surrounding whitespace. "ease" is the CSS default and maps to
// InOut, as does any unrecognized name.
func ParseKind(name string) Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "ease" {
		return InOut
	}
	for i, n := range names {
		if n == name {
			return Kind(i)
		}
	}
	return InOut
}

// UnmarshalText lets kinds be decoded from YAML and TOML documents.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

// MarshalText encodes k as its keyword.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Apply maps progress t through the curve k. t is clamped to [0, 1] first;
// NaN is treated as 0.
func Apply(t float64, k Kind) float64 {
	switch {
	case !(t > 0):
		return 0
	case t >= 1:
		return 1
	}
	if int(k) >= len(curves) {
		k = InOut
	}
	return curves[k](t)
}
