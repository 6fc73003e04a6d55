package constructer

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	gease "github.com/tanema/gween/ease"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/constructer/keyframe"
	"github.com/phanxgames/constructer/svgpath"
)

// Font measures text for layout along a path.
type Font interface {
	MeasureString(s string) (width, height float64)
	LineHeight() float64
}

// TTFFont wraps ebiten's text/v2 for TrueType rendering.
type TTFFont struct {
	face   *text.GoTextFace
	size   float64
	lh     float64
	ascent float64
}

// LoadTTFFont loads a TrueType or OpenType font at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("constructer: failed to parse font data: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &TTFFont{
		face:   face,
		size:   size,
		lh:     m.HAscent + m.HDescent + m.HLineGap,
		ascent: m.HAscent,
	}, nil
}

// DefaultFont returns Go Regular at the given size.
func DefaultFont(size float64) (*TTFFont, error) {
	return LoadTTFFont(goregular.TTF, size)
}

// MeasureString returns the width and height of s.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the distance between baselines.
func (f *TTFFont) LineHeight() float64 { return f.lh }

// Size returns the font size in pixels.
func (f *TTFFont) Size() float64 { return f.size }

// Face returns the underlying face for direct text/v2 use.
func (f *TTFFont) Face() *text.GoTextFace { return f.face }

// TextAnchor aligns text against its start offset.
type TextAnchor uint8

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

var anchorNames = [...]string{"start", "middle", "end"}

func (a TextAnchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return fmt.Sprintf("TextAnchor(%d)", a)
}

// ParseTextAnchor reads "start", "middle" or "end". Anything else is
// AnchorStart.
func ParseTextAnchor(s string) TextAnchor {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "middle", "center":
		return AnchorMiddle
	case "end":
		return AnchorEnd
	}
	return AnchorStart
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *TextAnchor) UnmarshalText(b []byte) error {
	*a = ParseTextAnchor(string(b))
	return nil
}

// PlacedGlyph is one character positioned on a path. X and Y are the left
// end of its baseline in the layer's path space; Angle is the baseline
// direction in radians.
type PlacedGlyph struct {
	Text  string
	X, Y  float64
	Angle float64
}

// TextPath lays a line of text along its layer's path. The path itself is
// not drawn; glyphs take the layer's Fill color.
type TextPath struct {
	Content string
	Font    Font
	Anchor  TextAnchor
	// StartOffset is where the anchor sits along the path. A "%" unit means
	// a share of the path length; anything else is a distance.
	StartOffset   keyframe.Value
	LetterSpacing float64

	advances []float64
	glyphs   []PlacedGlyph
}

// NewTextPath returns text starting at the beginning of the path.
func NewTextPath(content string, font Font) *TextPath {
	return &TextPath{
		Content:     content,
		Font:        font,
		StartOffset: keyframe.Number(0, "%"),
	}
}

// Offset resolves StartOffset against a path of the given length.
func (tp *TextPath) Offset(length float64) float64 {
	f, ok := tp.StartOffset.Float()
	if !ok {
		return 0
	}
	if tp.StartOffset.Unit() == "%" {
		return f / 100 * length
	}
	return f
}

// Width is the advance of the whole line including letter spacing.
func (tp *TextPath) Width() float64 {
	tp.measure()
	var w float64
	for _, a := range tp.advances {
		w += a
	}
	return w
}

// measure fills advances with each rune's advance. Measuring prefixes keeps
// kerning between neighbors.
func (tp *TextPath) measure() {
	tp.advances = tp.advances[:0]
	if tp.Font == nil {
		return
	}
	var prev float64
	for i, r := range tp.Content {
		w, _ := tp.Font.MeasureString(tp.Content[:i+utf8.RuneLen(r)])
		tp.advances = append(tp.advances, w-prev+tp.LetterSpacing)
		prev = w
	}
}

// Layout places every character on p. Each glyph is centered on the point
// its midpoint reaches along the path and rotated to the tangent there.
// Glyphs whose midpoint falls off either end of the path are dropped. The
// returned slice is reused by the next call.
func (tp *TextPath) Layout(p *svgpath.Path) []PlacedGlyph {
	tp.glyphs = tp.glyphs[:0]
	if p == nil || tp.Font == nil || tp.Content == "" {
		return tp.glyphs
	}
	length := p.Length()
	pos := tp.Offset(length)
	switch tp.Anchor {
	case AnchorMiddle:
		pos -= tp.Width() / 2
	case AnchorEnd:
		pos -= tp.Width()
	default:
		tp.measure()
	}

	i := 0
	for _, r := range tp.Content {
		adv := tp.advances[i]
		i++
		half := (adv - tp.LetterSpacing) / 2
		mid := pos + half
		pos += adv
		if mid < 0 || mid > length {
			continue
		}
		pt := p.PointAt(mid)
		angle := p.AngleAt(mid)
		sin, cos := math.Sincos(angle)
		tp.glyphs = append(tp.glyphs, PlacedGlyph{
			Text:  string(r),
			X:     pt.X - half*cos,
			Y:     pt.Y - half*sin,
			Angle: angle,
		})
	}
	return tp.glyphs
}

// composeGlyphTransform places a glyph at a local offset and rotation
// relative to the layer's world transform: world * Translate(x, y) *
// Rotate(angle).
func composeGlyphTransform(world [6]float64, x, y, angle float64) [6]float64 {
	sin, cos := math.Sincos(angle)
	return multiplyAffine(world, [6]float64{cos, sin, -sin, cos, x, y})
}

// geoM converts an affine matrix to ebiten's layout.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

// drawText draws the layer's text along its path and returns the number of
// glyph quads submitted, counted as two triangles each.
func drawText(dst *ebiten.Image, l *Layer, m [6]float64, alpha float64) int {
	f, ok := l.Text.Font.(*TTFFont)
	if !ok || l.Fill.A <= 0 {
		return 0
	}
	var op text.DrawOptions
	a := float32(l.Fill.A * alpha)
	n := 0
	for _, g := range l.Text.Layout(l.path) {
		r, _ := utf8.DecodeRuneInString(g.Text)
		if unicode.IsSpace(r) {
			continue
		}
		op.GeoM.Reset()
		op.GeoM.Translate(0, -f.ascent)
		op.GeoM.Concat(geoM(composeGlyphTransform(m, g.X, g.Y, g.Angle)))
		op.ColorScale.Reset()
		op.ColorScale.Scale(float32(l.Fill.R)*a, float32(l.Fill.G)*a, float32(l.Fill.B)*a, a)
		text.Draw(dst, g.Text, f.face, &op)
		n++
	}
	return n * 2
}

// NewTextLayer creates a layer that draws content along the path d in white.
func NewTextLayer(name, d, content string, font Font) (*Layer, error) {
	l, err := NewPathLayer(name, d)
	l.Text = NewTextPath(content, font)
	l.Fill = ColorWhite
	return l, err
}

// CircularText creates a text layer running clockwise around a circle,
// centered at the top.
func CircularText(name, content string, font Font, cx, cy, radius float64) (*Layer, error) {
	d := svgpath.NewBuilder().Circle(cx, cy, radius).String()
	l, err := NewTextLayer(name, d, content, font)
	l.Text.Anchor = AnchorMiddle
	l.Text.StartOffset = keyframe.Number(25, "%")
	return l, err
}

// wavySegments is the number of line segments in a WavyText path.
const wavySegments = 20

// WavyText creates a text layer following a sine wave that starts at
// (x, y) and spans width, with the given amplitude and number of periods.
func WavyText(name, content string, font Font, x, y, width, amplitude, frequency float64) (*Layer, error) {
	d := svgpath.NewBuilder().Wave(x, y, width, amplitude, frequency, wavySegments).String()
	return NewTextLayer(name, d, content, font)
}

// TweenStartOffset slides l's text from its current start offset to the
// given one. The units follow the current offset.
func TweenStartOffset(l *Layer, to float64, duration float32, fn gease.TweenFunc) *StyleTween {
	from := keyframe.Number(0, "%")
	if l.Text != nil {
		from = l.Text.StartOffset
	}
	set := keyframe.FromTo(
		keyframe.Props{"startOffset": from},
		keyframe.Props{"startOffset": keyframe.Number(to, from.Unit())},
	)
	return NewStyleTween(l, set, duration, fn)
}
