package svgpath

import (
	"math"
	"strconv"
	"strings"
)

// Builder assembles a path description command by command. Methods return
// the builder so calls can be chained; Build parses the result.
//
//	p, err := svgpath.NewBuilder().Star(50, 50, 40, 18, 5).Build()
type Builder struct {
	cmds []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (b *Builder) push(op byte, args ...float64) *Builder {
	var sb strings.Builder
	sb.WriteByte(op)
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmtNum(a))
	}
	b.cmds = append(b.cmds, sb.String())
	return b
}

// MoveTo starts a new subpath at (x, y).
func (b *Builder) MoveTo(x, y float64) *Builder { return b.push('M', x, y) }

// LineTo draws a straight line to (x, y).
func (b *Builder) LineTo(x, y float64) *Builder { return b.push('L', x, y) }

// HorizontalTo draws a horizontal line to x.
func (b *Builder) HorizontalTo(x float64) *Builder { return b.push('H', x) }

// VerticalTo draws a vertical line to y.
func (b *Builder) VerticalTo(y float64) *Builder { return b.push('V', y) }

// CurveTo draws a cubic Bézier through two control points to (x, y).
func (b *Builder) CurveTo(cx1, cy1, cx2, cy2, x, y float64) *Builder {
	return b.push('C', cx1, cy1, cx2, cy2, x, y)
}

// SmoothCurveTo draws a cubic Bézier whose first control point mirrors the
// previous curve's second one.
func (b *Builder) SmoothCurveTo(cx, cy, x, y float64) *Builder {
	return b.push('S', cx, cy, x, y)
}

// QuadraticTo draws a quadratic Bézier to (x, y).
func (b *Builder) QuadraticTo(cx, cy, x, y float64) *Builder {
	return b.push('Q', cx, cy, x, y)
}

// Arc draws an elliptical arc to (x, y). rotation is in degrees.
func (b *Builder) Arc(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) *Builder {
	flag := func(v bool) float64 {
		if v {
			return 1
		}
		return 0
	}
	return b.push('A', rx, ry, rotation, flag(largeArc), flag(sweep), x, y)
}

// Close closes the current subpath.
func (b *Builder) Close() *Builder {
	b.cmds = append(b.cmds, "Z")
	return b
}

// Polygon adds a closed polygon through the given points. Fewer than three
// points add nothing.
func (b *Builder) Polygon(points []Point) *Builder {
	if len(points) < 3 {
		return b
	}
	b.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		b.LineTo(pt.X, pt.Y)
	}
	return b.Close()
}

// Circle adds a circle of radius r centered on (cx, cy) as two half arcs.
func (b *Builder) Circle(cx, cy, r float64) *Builder {
	return b.MoveTo(cx-r, cy).
		Arc(r, r, 0, true, true, cx+r, cy).
		Arc(r, r, 0, true, true, cx-r, cy)
}

// Rect adds a rectangle. A positive rx rounds the corners.
func (b *Builder) Rect(x, y, width, height, rx float64) *Builder {
	if rx <= 0 {
		return b.Polygon([]Point{{x, y}, {x + width, y}, {x + width, y + height}, {x, y + height}})
	}
	return b.MoveTo(x+rx, y).
		HorizontalTo(x+width-rx).
		Arc(rx, rx, 0, false, true, x+width, y+rx).
		VerticalTo(y+height-rx).
		Arc(rx, rx, 0, false, true, x+width-rx, y+height).
		HorizontalTo(x+rx).
		Arc(rx, rx, 0, false, true, x, y+height-rx).
		VerticalTo(y+rx).
		Arc(rx, rx, 0, false, true, x+rx, y)
}

// Star adds a star polygon with the given number of points, alternating
// between the outer and inner radius. The first point is straight up.
func (b *Builder) Star(cx, cy, outerR, innerR float64, points int) *Builder {
	if points < 2 {
		return b
	}
	step := math.Pi / float64(points)
	coords := make([]Point, 0, points*2)
	for i := 0; i < points*2; i++ {
		r := outerR
		if i%2 == 1 {
			r = innerR
		}
		angle := float64(i)*step - math.Pi/2
		coords = append(coords, Point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)})
	}
	return b.Polygon(coords)
}

// Wave adds a sine wave starting at (x, y) that spans width in the given
// number of straight segments, with the given amplitude and number of
// periods.
func (b *Builder) Wave(x, y, width, amplitude, periods float64, segments int) *Builder {
	segments = max(segments, 1)
	b.MoveTo(x, y)
	for i := 1; i <= segments; i++ {
		f := float64(i) / float64(segments)
		b.LineTo(x+width*f, y+math.Sin(f*math.Pi*periods*2)*amplitude)
	}
	return b
}

// String returns the description built so far.
func (b *Builder) String() string {
	return strings.Join(b.cmds, " ")
}

// Build parses the description built so far.
func (b *Builder) Build() (*Path, error) {
	return Parse(b.String())
}

// Clear discards all commands.
func (b *Builder) Clear() *Builder {
	b.cmds = b.cmds[:0]
	return b
}
