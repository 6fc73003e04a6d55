package svgpath

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		d    string
	}{
		{"Empty", ""},
		{"Blank", "   "},
		{"NoMove", "L 10 10"},
		{"MissingNumber", "M 10"},
		{"UnknownCommand", "M 10 10 X 5 5"},
		{"BadArcFlag", "M0 0 A 1 1 0 2 0 5 5"},
		{"NumberAfterClose", "M0 0 L5 5 Z 5"},
		{"Garbage", "M0 0 L5 5 #"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax), "error %v should wrap ErrSyntax", err)
		})
	}
}

func TestParseKeepsSource(t *testing.T) {
	const d = "M 10 10 L 20 20 Z"
	p := MustParse(d)
	assert.Equal(t, d, p.String())
}

func TestLengths(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want float64
		tol  float64
	}{
		{"Line", "M0 0 L3 4", 5, 1e-9},
		{"Relative", "m0 0 l3 4 h-3 v-4 z", 12, 1e-9},
		{"ImplicitLineTo", "M0 0 10 0 10 10", 20, 1e-9},
		{"CompactNumbers", "M0,0L10-5", math.Hypot(10, 5), 1e-9},
		{"CloseAddsEdge", "M0 0 H10 V10 H0 Z", 40, 1e-9},
		{"MultiSubpath", "M0 0 L10 0 M100 100 L110 100", 20, 1e-9},
		{"Semicircle", "M0 0 A 50 50 0 0 1 100 0", 50 * math.Pi, 0.05},
		{"ArcRadiiScaledUp", "M0 0 A 1 1 0 0 1 100 0", 50 * math.Pi, 0.05},
		{"ArcZeroRadius", "M0 0 A 0 5 0 0 1 10 0", 10, 1e-9},
		{"PackedArcFlags", "M0 0 a50 50 0 01100 0", 50 * math.Pi, 0.05},
		{"StraightCubic", "M0 0 C 10 0 20 0 30 0", 30, 1e-6},
		{"MoveOnly", "M5 5", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.d)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p.Length(), tt.tol)
		})
	}
}

func TestEndPoints(t *testing.T) {
	tests := []struct {
		d     string
		start Point
		end   Point
	}{
		{"M0,0L10-5", Point{0, 0}, Point{10, -5}},
		{"m5 5 l10 0", Point{5, 5}, Point{15, 5}},
		{"M0 0 Q 50 100 100 0 T 200 0", Point{0, 0}, Point{200, 0}},
		{"M0 0 C 0 50 100 50 100 0 S 200 -50 200 0", Point{0, 0}, Point{200, 0}},
		{"M0 0 A 50 50 0 0 1 100 0", Point{0, 0}, Point{100, 0}},
		{"M0 0 L10 0 L10 10 Z", Point{0, 0}, Point{0, 0}},
	}
	for _, tt := range tests {
		p := MustParse(tt.d)
		assert.True(t, p.Start().Near(tt.start, 1e-9), "%q start = %v, want %v", tt.d, p.Start(), tt.start)
		assert.True(t, p.End().Near(tt.end, 1e-9), "%q end = %v, want %v", tt.d, p.End(), tt.end)
	}
}

func TestSmoothQuadReflectsControl(t *testing.T) {
	// Both halves are mirror images, so the arc-length midpoint of the second
	// half is its apex at (150, -50).
	p := MustParse("M0 0 Q 50 100 100 0 T 200 0")
	mid := p.PointAt(p.Length() * 0.75)
	assert.True(t, mid.Near(Point{150, -50}, 0.5), "got %v", mid)
}

func TestSmoothCubicWithoutPredecessor(t *testing.T) {
	// With no previous cubic the first control point is the current point.
	a := MustParse("M0 0 S 100 0 100 0")
	b := MustParse("M0 0 C 0 0 100 0 100 0")
	assert.InDelta(t, b.Length(), a.Length(), 1e-9)
}

func TestSampleEvenlyByArcLength(t *testing.T) {
	// The first segment is much shorter than the second; samples still fall
	// every 10 units.
	pts, err := Sample("M0 0 L10 0 L100 0", 11)
	require.NoError(t, err)
	want := make([]Point, 11)
	for i := range want {
		want[i] = Point{float64(i) * 10, 0}
	}
	diff(t, want, pts, approx)
}

func TestSampleCount(t *testing.T) {
	p := MustParse("M0 0 L10 0")
	for _, n := range []int{-1, 0, 1} {
		_, err := p.Sample(n)
		assert.ErrorIs(t, err, ErrSampleCount)
	}
	pts, err := p.Sample(2)
	require.NoError(t, err)
	diff(t, []Point{{0, 0}, {10, 0}}, pts)
}

func TestSampleClosedPath(t *testing.T) {
	paths := []string{
		NewBuilder().Circle(100, 100, 50).String(),
		NewBuilder().Rect(0, 0, 80, 40, 8).String(),
		NewBuilder().Star(50, 50, 40, 18, 5).String(),
		"M0 0 L10 0 L10 10 Z",
	}
	for _, d := range paths {
		pts, err := Sample(d, DefaultSamples)
		require.NoError(t, err, d)
		require.Len(t, pts, DefaultSamples)
		assert.True(t, pts[0].Near(pts[len(pts)-1], 1e-6), "%q: first %v, last %v", d, pts[0], pts[len(pts)-1])
	}
}

func TestCircleLength(t *testing.T) {
	p, err := NewBuilder().Circle(0, 0, 50).Build()
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi*50, p.Length(), 0.1)

	pts, err := p.Sample(DefaultSamples)
	require.NoError(t, err)
	for _, pt := range pts {
		assert.InDelta(t, 50, math.Hypot(pt.X, pt.Y), 0.05)
	}
}

func TestPointAtAcrossSubpaths(t *testing.T) {
	p := MustParse("M0 0 L10 0 M100 100 L110 100")
	assert.Equal(t, 2, p.Subpaths())
	assert.True(t, p.PointAt(5).Near(Point{5, 0}, 1e-9))
	assert.True(t, p.PointAt(10).Near(Point{10, 0}, 1e-9))
	assert.True(t, p.PointAt(15).Near(Point{105, 100}, 1e-9))
	assert.True(t, p.PointAt(-3).Near(Point{0, 0}, 1e-9))
	assert.True(t, p.PointAt(1000).Near(Point{110, 100}, 1e-9))
}

func TestZeroLengthPath(t *testing.T) {
	pts, err := Sample("M5 5", 3)
	require.NoError(t, err)
	diff(t, []Point{{5, 5}, {5, 5}, {5, 5}}, pts)
}

func TestClosedFlag(t *testing.T) {
	assert.True(t, MustParse("M0 0 L10 0 L10 10 Z").Closed())
	assert.False(t, MustParse("M0 0 L10 0 L10 10").Closed())
	assert.False(t, MustParse("M0 0 L10 0 Z L20 20").Closed())
}

func TestBounds(t *testing.T) {
	r := MustParse(NewBuilder().Rect(10, 20, 30, 40, 0).String()).Bounds()
	assert.Equal(t, Rect{MinX: 10, MinY: 20, MaxX: 40, MaxY: 60}, r)
	assert.Equal(t, 30.0, r.Width())
	assert.Equal(t, 40.0, r.Height())
}

func TestPolylines(t *testing.T) {
	p := MustParse("M0 0 L10 0 L10 10 Z M50 50 M100 100 L110 100")
	lines := p.Polylines()
	require.Len(t, lines, 2)
	diff(t, []Point{{0, 0}, {10, 0}, {10, 10}, {0, 0}}, lines[0], approx)
	diff(t, []Point{{100, 100}, {110, 100}}, lines[1], approx)

	assert.Empty(t, MustParse("M5 5").Polylines())
}

func TestAngleAt(t *testing.T) {
	p := MustParse("M0 0 L10 0 L10 10 L0 10")
	tests := []struct {
		at   float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{5, 0},
		{10, math.Pi / 2},
		{15, math.Pi / 2},
		{25, math.Pi},
		{100, math.Pi},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, p.AngleAt(tt.at), 1e-9, "at %v", tt.at)
	}
}

func TestAngleAtFollowsArc(t *testing.T) {
	p := MustParse("M10 0 A10 10 0 0 1 -10 0")
	// Clockwise in screen space from (10,0) through (0,10): heading down at
	// the start, left at the bottom.
	assert.InDelta(t, math.Pi/2, p.AngleAt(0), 0.05)
	assert.InDelta(t, math.Pi, math.Abs(p.AngleAt(p.Length()/2)), 0.05)
}

func TestAngleAtDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, MustParse("M5 5").AngleAt(1))
	p := MustParse("M0 0 L0 10 M20 0 L30 0")
	assert.InDelta(t, math.Pi/2, p.AngleAt(5), 1e-9)
	assert.InDelta(t, 0, p.AngleAt(10), 1e-9, "hop to the next subpath is skipped")
}
