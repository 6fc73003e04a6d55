package svgpath

import (
	"fmt"
	"math"
)

// Point is a 2D coordinate in the path's local coordinate space.
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// Lerp returns p + (q - p) * t, per coordinate.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Near reports whether p and q are within tol of each other on both axes.
func (p Point) Near(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Lerp interpolates two point sequences index by index. The result has the
// length of the shorter input; extra points on the longer side are dropped.
func Lerp(from, to []Point, t float64) []Point {
	n := min(len(from), len(to))
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		out[i] = from[i].Lerp(to[i], t)
	}
	return out
}

// Pad extends points to length n by repeating the last point. Sequences that
// are already n long or longer, and empty sequences, are returned unchanged.
func Pad(points []Point, n int) []Point {
	if len(points) == 0 || len(points) >= n {
		return points
	}
	out := make([]Point, n)
	copy(out, points)
	last := points[len(points)-1]
	for i := len(points); i < n; i++ {
		out[i] = last
	}
	return out
}
