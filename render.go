package constructer

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

// whiteTexture returns a 1x1 white source for untextured triangles. The
// center pixel of a 3x3 image avoids sampling the edges.
func whiteTexture() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(ColorWhite.toRGBA())
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// buildVectorPath converts the layer's polylines into an ebiten vector path
// in screen space.
func buildVectorPath(l *Layer, m [6]float64) *vector.Path {
	var p vector.Path
	for _, line := range l.path.Polylines() {
		for i, pt := range line {
			x, y := transformPoint(m, pt.X, pt.Y)
			if i == 0 {
				p.MoveTo(float32(x), float32(y))
			} else {
				p.LineTo(float32(x), float32(y))
			}
		}
		first, last := line[0], line[len(line)-1]
		if first == last {
			p.Close()
		}
	}
	return &p
}

// drawLayer draws one layer onto dst and returns the number of triangles
// submitted.
func drawLayer(dst *ebiten.Image, l *Layer, view [6]float64) int {
	if !l.Visible || l.Alpha <= 0 || l.path == nil {
		return 0
	}
	m := multiplyAffine(view, computeLocalTransform(l))
	if len(l.Filters) > 0 {
		return drawFiltered(dst, l, m)
	}
	return drawShape(dst, l, m, l.Alpha)
}

// drawShape fills and strokes the path, or draws the layer's text along it.
func drawShape(dst *ebiten.Image, l *Layer, m [6]float64, alpha float64) int {
	if l.Text != nil {
		return drawText(dst, l, m, alpha)
	}
	p := buildVectorPath(l, m)
	tris := 0

	if fill := l.Fill; fill.A > 0 {
		l.vs, l.is = p.AppendVerticesAndIndicesForFilling(l.vs[:0], l.is[:0])
		tris += submitTriangles(dst, l.vs, l.is, fill, alpha, ebiten.FillRuleNonZero)
	}

	if stroke := l.Stroke; stroke.A > 0 && l.StrokeWidth > 0 {
		op := &vector.StrokeOptions{
			Width:    float32(l.StrokeWidth * scaleFactor(m)),
			LineJoin: vector.LineJoinRound,
			LineCap:  vector.LineCapRound,
		}
		l.vs, l.is = p.AppendVerticesAndIndicesForStroke(l.vs[:0], l.is[:0], op)
		tris += submitTriangles(dst, l.vs, l.is, stroke, alpha, ebiten.FillAll)
	}
	return tris
}

// screenBounds is the layer's drawn extent under m: the transformed path
// grown by half the stroke width, or by a line height for text.
func screenBounds(l *Layer, m [6]float64) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, line := range l.path.Polylines() {
		for _, pt := range line {
			x, y := transformPoint(m, pt.X, pt.Y)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	if minX > maxX {
		return Rect{}
	}
	var grow float64
	switch {
	case l.Text != nil && l.Text.Font != nil:
		grow = l.Text.Font.LineHeight() * scaleFactor(m)
	case l.Stroke.A > 0:
		grow = l.StrokeWidth * scaleFactor(m) / 2
	}
	return Rect{X: minX - grow, Y: minY - grow, Width: maxX - minX + 2*grow, Height: maxY - minY + 2*grow}
}

// filterRegion is the integer pixel rectangle a filtered layer is rendered
// into: its bounds padded for the filter chain and capped in size.
func filterRegion(b Rect, pad int) image.Rectangle {
	x0 := int(math.Floor(b.X)) - pad
	y0 := int(math.Floor(b.Y)) - pad
	x1 := int(math.Ceil(b.X+b.Width)) + pad
	y1 := int(math.Ceil(b.Y+b.Height)) + pad
	return image.Rect(x0, y0, min(x1, x0+maxFilterSize), min(y1, y0+maxFilterSize))
}

// drawFiltered renders the layer offscreen, runs its filters and composites
// the result with the layer's alpha.
func drawFiltered(dst *ebiten.Image, l *Layer, m [6]float64) int {
	r := filterRegion(screenBounds(l, m), filterChainPadding(l.Filters))
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return 0
	}
	full, src := offscreen.acquire(r.Dx(), r.Dy())
	defer offscreen.release(full)

	local := multiplyAffine([6]float64{1, 0, 0, 1, -float64(r.Min.X), -float64(r.Min.Y)}, m)
	tris := drawShape(src, l, local, 1)
	if tris == 0 {
		return 0
	}
	out, pooled := applyFilters(l.Filters, src)

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorScale.ScaleAlpha(float32(l.Alpha))
	dst.DrawImage(out, &op)
	for _, img := range pooled {
		offscreen.release(img)
	}
	return tris + 2
}

func submitTriangles(dst *ebiten.Image, vs []ebiten.Vertex, is []uint16, c Color, alpha float64, rule ebiten.FillRule) int {
	if len(is) == 0 {
		return 0
	}
	a := float32(c.A * alpha)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(c.R)
		vs[i].ColorG = float32(c.G)
		vs[i].ColorB = float32(c.B)
		vs[i].ColorA = a
	}
	var triOp ebiten.DrawTrianglesOptions
	triOp.FillRule = rule
	triOp.AntiAlias = true
	dst.DrawTriangles(vs, is, whiteTexture(), &triOp)
	return len(is) / 3
}
