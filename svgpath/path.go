// Package svgpath parses 2D vector path descriptions, measures them by arc
// length, samples them into evenly spaced points, and serializes point
// sequences back into path descriptions.
//
// A parsed [Path] is immutable. Length and point-at-length queries run over a
// flattened polyline built once at parse time, so sampling has no side
// effects and a Path may be shared freely.
package svgpath

import (
	"errors"
	"math"
	"sort"
)

// DefaultSamples is the sample count used when morphing two paths.
const DefaultSamples = 64

// ErrSampleCount is returned when fewer than two samples are requested.
var ErrSampleCount = errors.New("svgpath: sample count must be at least 2")

type segKind uint8

const (
	segLine segKind = iota
	segQuad
	segCubic
	segArc
)

// segment is one drawing command in absolute coordinates. Arcs are kept in
// center parameterization.
type segment struct {
	kind           segKind
	p0, p1, p2, p3 Point // start, controls, end (line and quad use fewer)

	center        Point
	rx, ry        float64
	phi           float64 // x-axis rotation in radians
	theta, dtheta float64 // start angle and sweep in radians
}

func (s *segment) end() Point {
	return s.p3
}

func (s *segment) eval(t float64) Point {
	if t >= 1 {
		return s.p3
	}
	switch s.kind {
	case segQuad:
		mt := 1 - t
		return Point{
			mt*mt*s.p0.X + 2*mt*t*s.p1.X + t*t*s.p3.X,
			mt*mt*s.p0.Y + 2*mt*t*s.p1.Y + t*t*s.p3.Y,
		}
	case segCubic:
		mt := 1 - t
		a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
		return Point{
			a*s.p0.X + b*s.p1.X + c*s.p2.X + d*s.p3.X,
			a*s.p0.Y + b*s.p1.Y + c*s.p2.Y + d*s.p3.Y,
		}
	case segArc:
		sinPhi, cosPhi := math.Sincos(s.phi)
		sin, cos := math.Sincos(s.theta + t*s.dtheta)
		return Point{
			s.center.X + s.rx*cosPhi*cos - s.ry*sinPhi*sin,
			s.center.Y + s.rx*sinPhi*cos + s.ry*cosPhi*sin,
		}
	default:
		return s.p0.Lerp(s.p3, t)
	}
}

// hull returns the length of the control polygon, an upper bound on the
// segment's arc length used to pick a flattening density.
func (s *segment) hull() float64 {
	switch s.kind {
	case segQuad:
		return s.p0.Dist(s.p1) + s.p1.Dist(s.p3)
	case segCubic:
		return s.p0.Dist(s.p1) + s.p1.Dist(s.p2) + s.p2.Dist(s.p3)
	case segArc:
		return math.Abs(s.dtheta) * max(s.rx, s.ry)
	default:
		return s.p0.Dist(s.p3)
	}
}

const (
	flattenStep = 0.5  // target polyline step in path units
	minSubdiv   = 16   // per curved segment
	maxSubdiv   = 2048 // per curved segment
)

func (s *segment) subdivisions() int {
	if s.kind == segLine {
		return 1
	}
	n := int(math.Ceil(s.hull() / flattenStep))
	return max(minSubdiv, min(n, maxSubdiv))
}

// stop is one vertex of the flattened outline with its cumulative length.
type stop struct {
	pt   Point
	dist float64
}

// Path is a parsed, immutable vector path.
type Path struct {
	src     string
	segs    []segment
	stops   []stop
	length  float64
	start   Point
	closed  bool
	subs    []int // index into stops where each subpath begins
	hasDraw bool
}

// String returns the description the path was parsed from, unchanged.
func (p *Path) String() string {
	return p.src
}

// Length returns the total arc length of the outline. Moves between
// subpaths contribute nothing.
func (p *Path) Length() float64 {
	return p.length
}

// Start returns the first point of the path.
func (p *Path) Start() Point {
	return p.start
}

// End returns the terminal point of the outline.
func (p *Path) End() Point {
	return p.PointAt(p.length)
}

// Closed reports whether the final subpath ends with a close command.
func (p *Path) Closed() bool {
	return p.closed
}

// Subpaths returns the number of subpaths.
func (p *Path) Subpaths() int {
	return len(p.subs)
}

// Polylines returns the flattened outline, one point slice per subpath.
// Subpaths that only move are skipped.
func (p *Path) Polylines() [][]Point {
	out := make([][]Point, 0, len(p.subs))
	for i, first := range p.subs {
		end := len(p.stops)
		if i+1 < len(p.subs) {
			end = p.subs[i+1]
		}
		if end-first < 2 {
			continue
		}
		line := make([]Point, end-first)
		for k := range line {
			line[k] = p.stops[first+k].pt
		}
		out = append(out, line)
	}
	return out
}

// Bounds returns the bounding box of the flattened outline.
func (p *Path) Bounds() Rect {
	r := Rect{MinX: p.start.X, MinY: p.start.Y, MaxX: p.start.X, MaxY: p.start.Y}
	for _, st := range p.stops {
		r.MinX = min(r.MinX, st.pt.X)
		r.MinY = min(r.MinY, st.pt.Y)
		r.MaxX = max(r.MaxX, st.pt.X)
		r.MaxY = max(r.MaxY, st.pt.Y)
	}
	return r
}

// PointAt returns the point at the given distance along the outline. The
// distance is clamped to [0, Length()].
func (p *Path) PointAt(length float64) Point {
	if len(p.stops) == 0 {
		return p.start
	}
	if !(length > 0) {
		return p.stops[0].pt
	}
	if length >= p.length {
		length = p.length
	}
	i := sort.Search(len(p.stops), func(i int) bool { return p.stops[i].dist >= length })
	if i == 0 {
		return p.stops[0].pt
	}
	if i >= len(p.stops) {
		return p.stops[len(p.stops)-1].pt
	}
	a, b := p.stops[i-1], p.stops[i]
	span := b.dist - a.dist
	if span <= 0 {
		return b.pt
	}
	return a.pt.Lerp(b.pt, (length-a.dist)/span)
}

// AngleAt returns the direction of travel, in radians, at the given
// distance along the outline. At a vertex the outgoing direction wins. The
// distance is clamped like PointAt; a path without length reports 0.
func (p *Path) AngleAt(length float64) float64 {
	if len(p.stops) < 2 || !(p.length > 0) {
		return 0
	}
	length = math.Max(0, math.Min(length, p.length))
	i := sort.Search(len(p.stops), func(i int) bool { return p.stops[i].dist > length })
	i = max(1, min(i, len(p.stops)-1))
	// Skip the zero-length hops between subpaths, forward first.
	for j := i; j < len(p.stops); j++ {
		if p.stops[j].dist > p.stops[j-1].dist {
			d := p.stops[j].pt.Sub(p.stops[j-1].pt)
			return math.Atan2(d.Y, d.X)
		}
	}
	for j := i - 1; j > 0; j-- {
		if p.stops[j].dist > p.stops[j-1].dist {
			d := p.stops[j].pt.Sub(p.stops[j-1].pt)
			return math.Atan2(d.Y, d.X)
		}
	}
	return 0
}

// Sample returns n points spaced evenly by arc length, at fractions
// 0/(n-1), 1/(n-1), ..., 1 of the total length. The first point is the
// path's start and the last its terminal point.
func (p *Path) Sample(n int) ([]Point, error) {
	if n < 2 {
		return nil, ErrSampleCount
	}
	out := make([]Point, n)
	for i := 0; i < n-1; i++ {
		out[i] = p.PointAt(float64(i) / float64(n-1) * p.length)
	}
	out[n-1] = p.PointAt(p.length)
	return out, nil
}

// Sample parses d and samples it at n points.
func Sample(d string, n int) ([]Point, error) {
	p, err := Parse(d)
	if err != nil {
		return nil, err
	}
	return p.Sample(n)
}

// pathBuilder accumulates absolute segments and the flattened outline while
// the parser walks the description.
type pathBuilder struct {
	p          *Path
	cur        Point
	subStart   Point
	subOpen    bool
	subDrawn   bool
	needsStart bool // after a close, the next draw reopens at cur
}

func newBuilder(src string) *pathBuilder {
	return &pathBuilder{p: &Path{src: src}}
}

func (b *pathBuilder) current() Point {
	return b.cur
}

func (b *pathBuilder) moveTo(pt Point) {
	b.cur, b.subStart = pt, pt
	b.needsStart = false
	b.p.closed = false
	if !b.p.hasDraw {
		b.p.start = pt
	}
	if b.subOpen && !b.subDrawn {
		// consecutive moves collapse into the last one
		b.p.stops[len(b.p.stops)-1].pt = pt
		return
	}
	b.subOpen = false
	b.openSubpath()
}

func (b *pathBuilder) openSubpath() {
	if b.subOpen {
		return
	}
	b.subOpen = true
	b.subDrawn = false
	b.p.subs = append(b.p.subs, len(b.p.stops))
	var dist float64
	if n := len(b.p.stops); n > 0 {
		dist = b.p.stops[n-1].dist
	}
	b.p.stops = append(b.p.stops, stop{pt: b.subStart, dist: dist})
}

func (b *pathBuilder) beginDraw() {
	if b.needsStart {
		b.subStart = b.cur
		b.subOpen = false
		b.needsStart = false
		b.p.closed = false
	}
	b.openSubpath()
	b.subDrawn = true
	b.p.hasDraw = true
}

func (b *pathBuilder) add(seg segment) {
	b.beginDraw()
	b.p.segs = append(b.p.segs, seg)
	n := seg.subdivisions()
	last := b.p.stops[len(b.p.stops)-1]
	for k := 1; k <= n; k++ {
		pt := seg.eval(float64(k) / float64(n))
		last = stop{pt: pt, dist: last.dist + last.pt.Dist(pt)}
		b.p.stops = append(b.p.stops, last)
	}
	b.p.length = last.dist
	b.cur = seg.end()
}

func (b *pathBuilder) lineTo(pt Point) {
	b.add(segment{kind: segLine, p0: b.cur, p3: pt})
}

func (b *pathBuilder) quadTo(c, pt Point) {
	b.add(segment{kind: segQuad, p0: b.cur, p1: c, p3: pt})
}

func (b *pathBuilder) cubicTo(c1, c2, pt Point) {
	b.add(segment{kind: segCubic, p0: b.cur, p1: c1, p2: c2, p3: pt})
}

// arcTo appends an elliptical arc given in endpoint parameterization,
// converting it to center parameterization. Out-of-range radii are scaled
// up; a zero radius degrades to a straight line and a zero-length arc is
// dropped.
func (b *pathBuilder) arcTo(rx, ry, phi float64, large, sweep bool, pt Point) {
	p0 := b.cur
	if p0 == pt {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		b.lineTo(pt)
		return
	}

	sinPhi, cosPhi := math.Sincos(phi)
	dx2 := (p0.X - pt.X) / 2
	dy2 := (p0.Y - pt.Y) / 2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	if lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	rx2, ry2 := rx*rx, ry*ry
	num := rx2*ry2 - rx2*y1p*y1p - ry2*x1p*x1p
	den := rx2*y1p*y1p + ry2*x1p*x1p
	var coef float64
	if den > 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	center := Point{
		cosPhi*cxp - sinPhi*cyp + (p0.X+pt.X)/2,
		sinPhi*cxp + cosPhi*cyp + (p0.Y+pt.Y)/2,
	}

	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry
	theta := vecAngle(1, 0, ux, uy)
	dtheta := math.Mod(vecAngle(ux, uy, vx, vy), 2*math.Pi)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	b.add(segment{
		kind:   segArc,
		p0:     p0,
		p3:     pt,
		center: center,
		rx:     rx,
		ry:     ry,
		phi:    phi,
		theta:  theta,
		dtheta: dtheta,
	})
}

func vecAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}

func (b *pathBuilder) closePath() {
	if b.needsStart {
		return
	}
	if b.cur != b.subStart {
		b.lineTo(b.subStart)
	}
	b.cur = b.subStart
	b.needsStart = true
	b.p.closed = true
}

func (b *pathBuilder) finish() *Path {
	return b.p
}
