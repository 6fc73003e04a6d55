package constructer

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is a visual effect applied to a layer's rendered output. A layer
// with filters is drawn to an offscreen image first; the filters then run in
// order, each reading the previous result.
type Filter interface {
	// Apply renders src into dst with the effect. Both have the same size.
	Apply(src, dst *ebiten.Image)
	// Padding is the extra room in pixels the effect needs around the shape.
	Padding() int
}

// maxFilterSize caps the offscreen image for a filtered layer.
const maxFilterSize = 4096

// All shaders use //kage:unit pixels. Ebitengine works in premultiplied
// alpha, so the shader un-premultiplies before the matrix and re-premultiplies
// after.
const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// Compiled on first use. Drawing is single-threaded.
var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("constructer: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

// ColorMatrix is a 4x5 color transform in row-major order:
// [Rr, Rg, Rb, Ra, Roffset, Gr, ...]. Offsets are in the 0..1 range.
type ColorMatrix [20]float64

// Preset matrices.
var (
	IdentityMatrix = ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
	GrayscaleMatrix = ColorMatrix{
		0.33, 0.33, 0.33, 0, 0,
		0.33, 0.33, 0.33, 0, 0,
		0.33, 0.33, 0.33, 0, 0,
		0, 0, 0, 1, 0,
	}
	SepiaMatrix = ColorMatrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
	InvertMatrix = ColorMatrix{
		-1, 0, 0, 0, 1,
		0, -1, 0, 0, 1,
		0, 0, -1, 0, 1,
		0, 0, 0, 1, 0,
	}
)

// BrightnessMatrix shifts every channel by b in [-1, 1].
func BrightnessMatrix(b float64) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix scales contrast around mid gray. 1 is unchanged, 0 is flat
// gray.
func ContrastMatrix(c float64) ColorMatrix {
	t := (1 - c) / 2
	return ColorMatrix{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix scales saturation. 1 is unchanged, 0 is grayscale.
func SaturationMatrix(s float64) ColorMatrix {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	return ColorMatrix{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// FloodMatrix replaces every color with c and scales alpha by c.A, keeping
// the shape's coverage.
func FloodMatrix(c Color) ColorMatrix {
	return ColorMatrix{
		0, 0, 0, 0, c.R,
		0, 0, 0, 0, c.G,
		0, 0, 0, 0, c.B,
		0, 0, 0, c.A, 0,
	}
}

// Transform applies the matrix to one straight-alpha color the way the
// shader does, clamping each channel to [0, 1].
func (m ColorMatrix) Transform(c Color) Color {
	row := func(i int) float64 {
		return clamp01(m[i]*c.R + m[i+1]*c.G + m[i+2]*c.B + m[i+3]*c.A + m[i+4])
	}
	return Color{R: row(0), G: row(5), B: row(10), A: row(15)}
}

// ColorMatrixFilter recolors every pixel through a ColorMatrix.
type ColorMatrixFilter struct {
	Matrix ColorMatrix

	uniforms  map[string]any
	matrixF32 [20]float32
	shaderOp  ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter returns a filter applying m.
func NewColorMatrixFilter(m ColorMatrix) *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: m}
}

// Apply implements Filter.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	if f.uniforms == nil {
		f.uniforms = map[string]any{"Matrix": f.matrixF32[:]}
	}
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	b := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), ensureColorMatrixShader(), &f.shaderOp)
}

// Padding implements Filter. Color changes never grow the shape.
func (f *ColorMatrixFilter) Padding() int { return 0 }

// BlurFilter is a Kawase blur: the image is halved repeatedly with bilinear
// filtering and scaled back up.
type BlurFilter struct {
	Radius int

	temps []*ebiten.Image
	imgOp ebiten.DrawImageOptions
}

// NewBlurFilter returns a blur of the given radius in pixels.
func NewBlurFilter(radius int) *BlurFilter {
	return &BlurFilter{Radius: max(radius, 0)}
}

// blurPasses is the number of halvings for a radius: ceil(log2(radius)),
// at least one.
func blurPasses(radius int) int {
	if radius <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(radius))))
}

// Apply implements Filter.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	if f.Radius <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := blurPasses(f.Radius)
	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	current := src
	for i := range passes {
		w, h = max(w/2, 1), max(h/2, 1)
		if t := f.temps[i]; t == nil || t.Bounds().Dx() != w || t.Bounds().Dy() != h {
			if t != nil {
				t.Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			t.Clear()
		}
		scaleInto(f.temps[i], current, op)
		current = f.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		scaleInto(f.temps[i], current, op)
		current = f.temps[i]
	}
	scaleInto(dst, current, op)
}

// scaleInto draws src stretched over dst with bilinear filtering.
func scaleInto(dst, src *ebiten.Image, op *ebiten.DrawImageOptions) {
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.GeoM.Translate(float64(db.Min.X), float64(db.Min.Y))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// Padding implements Filter.
func (f *BlurFilter) Padding() int { return f.Radius }

// shadowPass floods the source with one color, blurs it and draws it offset
// behind the original. Drop shadows and glows are both built on it.
type shadowPass struct {
	flood ColorMatrixFilter
	blur  BlurFilter
	op    ebiten.DrawImageOptions
}

func (s *shadowPass) draw(src, dst *ebiten.Image, c Color, radius int, dx, dy float64) {
	b := src.Bounds()
	floodFull, flooded := offscreen.acquire(b.Dx(), b.Dy())
	blurFull, blurred := offscreen.acquire(b.Dx(), b.Dy())
	defer offscreen.release(floodFull)
	defer offscreen.release(blurFull)

	s.flood.Matrix = FloodMatrix(c)
	s.flood.Apply(src, flooded)
	s.blur.Radius = radius
	s.blur.Apply(flooded, blurred)

	s.op.GeoM.Reset()
	s.op.ColorScale.Reset()
	s.op.Filter = ebiten.FilterNearest
	s.op.GeoM.Translate(dx, dy)
	dst.DrawImage(blurred, &s.op)
	s.op.GeoM.Reset()
	dst.DrawImage(src, &s.op)
}

// DropShadowFilter draws a blurred, offset copy of the shape in Color
// behind it.
type DropShadowFilter struct {
	DX, DY float64
	Blur   int
	Color  Color

	pass shadowPass
}

// NewDropShadowFilter returns a drop shadow. The usual defaults are an
// offset of (2, 2), a blur of 4 and half-transparent black.
func NewDropShadowFilter(dx, dy float64, blur int, c Color) *DropShadowFilter {
	return &DropShadowFilter{DX: dx, DY: dy, Blur: max(blur, 0), Color: c}
}

// Apply implements Filter.
func (f *DropShadowFilter) Apply(src, dst *ebiten.Image) {
	f.pass.draw(src, dst, f.Color, f.Blur, f.DX, f.DY)
}

// Padding implements Filter. The shadow needs room for its blur plus the
// larger of the two offsets.
func (f *DropShadowFilter) Padding() int {
	return f.Blur + int(math.Ceil(math.Max(math.Abs(f.DX), math.Abs(f.DY))))
}

// GlowFilter surrounds the shape with a blurred halo of Color.
type GlowFilter struct {
	Radius int
	Color  Color

	pass shadowPass
}

// NewGlowFilter returns a glow. The usual default is a radius of 4 in white.
func NewGlowFilter(radius int, c Color) *GlowFilter {
	return &GlowFilter{Radius: max(radius, 0), Color: c}
}

// Apply implements Filter.
func (f *GlowFilter) Apply(src, dst *ebiten.Image) {
	f.pass.draw(src, dst, f.Color, f.Radius, 0, 0)
}

// Padding implements Filter.
func (f *GlowFilter) Padding() int { return f.Radius }

// OutlineFilter draws the shape flooded with Color at eight offsets around
// it, then the shape itself on top.
type OutlineFilter struct {
	Thickness int
	Color     Color

	flood ColorMatrixFilter
	op    ebiten.DrawImageOptions
}

// NewOutlineFilter returns an outline of the given thickness.
func NewOutlineFilter(thickness int, c Color) *OutlineFilter {
	return &OutlineFilter{Thickness: max(thickness, 0), Color: c}
}

// outlineOffsets returns the eight cardinal and diagonal offsets at
// distance t.
func outlineOffsets(t float64) [8][2]float64 {
	return [8][2]float64{
		{-t, 0}, {t, 0}, {0, -t}, {0, t},
		{-t, -t}, {t, -t}, {-t, t}, {t, t},
	}
}

// Apply implements Filter.
func (f *OutlineFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	full, flooded := offscreen.acquire(b.Dx(), b.Dy())
	defer offscreen.release(full)
	f.flood.Matrix = FloodMatrix(f.Color)
	f.flood.Apply(src, flooded)

	op := &f.op
	op.ColorScale.Reset()
	op.Filter = ebiten.FilterNearest
	for _, off := range outlineOffsets(float64(f.Thickness)) {
		op.GeoM.Reset()
		op.GeoM.Translate(off[0], off[1])
		dst.DrawImage(flooded, op)
	}
	op.GeoM.Reset()
	dst.DrawImage(src, op)
}

// Padding implements Filter.
func (f *OutlineFilter) Padding() int { return f.Thickness }

// filterChainPadding is the sum of every filter's padding.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// renderTexturePool hands out reusable offscreen images keyed by
// power-of-two size.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

// offscreen serves filtered layers. Drawing is single-threaded.
var offscreen renderTexturePool

func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// nextPowerOfTwo returns the smallest power of two >= n, at least 1.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// acquire returns a cleared pooled image of at least (w, h) pixels and a
// view of exactly (w, h) at its origin. Release the full image.
func (p *renderTexturePool) acquire(w, h int) (full, view *ebiten.Image) {
	pw, ph := nextPowerOfTwo(w), nextPowerOfTwo(h)
	key := poolKey(pw, ph)
	if stack := p.buckets[key]; len(stack) > 0 {
		full = stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		full.Clear()
	} else {
		full = ebiten.NewImageWithOptions(image.Rect(0, 0, pw, ph), &ebiten.NewImageOptions{Unmanaged: true})
	}
	return full, full.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
}

// release returns an image from acquire to the pool.
func (p *renderTexturePool) release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	p.buckets[key] = append(p.buckets[key], img)
}

// applyFilters runs the chain on src, ping-ponging between pooled images.
// It returns the image holding the result and the pooled images to release
// once the result has been drawn.
func applyFilters(filters []Filter, src *ebiten.Image) (*ebiten.Image, []*ebiten.Image) {
	b := src.Bounds()
	current := src
	var pooled []*ebiten.Image
	var spare *ebiten.Image
	for _, f := range filters {
		dst := spare
		if dst == nil {
			full, view := offscreen.acquire(b.Dx(), b.Dy())
			pooled = append(pooled, full)
			dst = view
		} else {
			dst.Clear()
		}
		f.Apply(current, dst)
		if current != src {
			spare = current
		}
		current = dst
	}
	return current, pooled
}
