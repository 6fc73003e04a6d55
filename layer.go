package constructer

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/constructer/svgpath"
)

// Layer is one drawable shape in a Scene. A single flat struct covers the
// transform, paint and path state so the draw loop never dispatches through
// an interface.
//
// Layers satisfy both morph.Target and keyframe.Target, so morph sessions,
// timelines, style tweens and scroll effects can all drive the same layer.
type Layer struct {
	// Identity. ID is assigned by Scene.AddLayer.
	ID   string
	Name string
	Z    int

	// Transform (local). Rotation is in degrees, clockwise.
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64

	// Paint
	Alpha       float64
	Visible     bool
	Fill        Color
	Stroke      Color
	StrokeWidth float64

	// Fixed layers ignore the viewport scroll offset.
	Fixed bool

	// Text, when set, is drawn along the path in the Fill color and the
	// path itself is neither filled nor stroked.
	Text *TextPath

	// Filters run in order over the layer's rendered output. Alpha is then
	// applied to the filtered result as a whole.
	Filters []Filter

	// Bounds is the layer's rectangle in document space, used by scroll
	// effects. When zero, it is derived from the path and transform.
	Bounds Rect

	// OnChange runs after ApplyProps or SetPathData modifies the layer.
	OnChange func(l *Layer)

	scene    *Scene
	pathData string
	path     *svgpath.Path
	style    map[string]string
	seq      int // insertion order, keeps z sorting stable

	// Reused triangle buffers for fill and stroke.
	vs []ebiten.Vertex
	is []uint16
}

// NewLayer creates a visible layer with identity transform, black fill and
// no stroke.
func NewLayer(name string) *Layer {
	return &Layer{
		Name:        name,
		ScaleX:      1,
		ScaleY:      1,
		Alpha:       1,
		Visible:     true,
		Fill:        ColorBlack,
		StrokeWidth: 1,
	}
}

// NewPathLayer creates a layer with the given path data. Invalid data is
// reported and the layer starts without a shape.
func NewPathLayer(name, d string) (*Layer, error) {
	l := NewLayer(name)
	if err := l.SetPath(d); err != nil {
		return l, err
	}
	return l, nil
}

// Scene returns the scene the layer belongs to, or nil.
func (l *Layer) Scene() *Scene { return l.scene }

// SetPath parses d and replaces the layer's shape. On error the previous
// shape is kept.
func (l *Layer) SetPath(d string) error {
	if err := l.setPath(d); err != nil {
		return err
	}
	l.changed()
	return nil
}

func (l *Layer) setPath(d string) error {
	if d == "" {
		l.pathData, l.path = "", nil
		return nil
	}
	p, err := svgpath.Parse(d)
	if err != nil {
		return err
	}
	l.pathData, l.path = d, p
	return nil
}

// SetPathData implements morph.Target. Invalid data is logged and ignored.
func (l *Layer) SetPathData(d string) {
	if err := l.SetPath(d); err != nil {
		logger.Warn("layer: ignoring invalid path data", "layer", l.ID, "err", err)
	}
}

// PathData returns the current path description.
func (l *Layer) PathData() string { return l.pathData }

// Path returns the parsed shape, or nil.
func (l *Layer) Path() *svgpath.Path { return l.path }

// Style returns a free-form style property set through ApplyProps.
func (l *Layer) Style(name string) (string, bool) {
	v, ok := l.style[name]
	return v, ok
}

// SetStyle stores a free-form style property.
func (l *Layer) SetStyle(name, value string) {
	if l.style == nil {
		l.style = make(map[string]string)
	}
	l.style[name] = value
}

// SetPosition sets the layer's X and Y.
func (l *Layer) SetPosition(x, y float64) {
	l.X, l.Y = x, y
}

// SetScale sets the layer's ScaleX and ScaleY.
func (l *Layer) SetScale(sx, sy float64) {
	l.ScaleX, l.ScaleY = sx, sy
}

// SetPivot sets the point the layer scales and rotates around, in path
// coordinates.
func (l *Layer) SetPivot(px, py float64) {
	l.PivotX, l.PivotY = px, py
}

// LocalBounds returns the bounding box of the path in its own coordinates.
func (l *Layer) LocalBounds() Rect {
	if l.path == nil {
		return Rect{}
	}
	b := l.path.Bounds()
	return Rect{X: b.MinX, Y: b.MinY, Width: b.Width(), Height: b.Height()}
}

// DocumentBounds returns Bounds when set, otherwise the transformed path
// bounds.
func (l *Layer) DocumentBounds() Rect {
	if !l.Bounds.IsZero() {
		return l.Bounds
	}
	lb := l.LocalBounds()
	m := multiplyAffine(computeLocalTransform(l), [6]float64{1, 0, 0, 1, lb.X, lb.Y})
	return worldAABB(m, lb.Width, lb.Height)
}

// Center returns the midpoint of DocumentBounds.
func (l *Layer) Center() Vec2 {
	b := l.DocumentBounds()
	return Vec2{b.X + b.Width/2, b.Y + b.Height/2}
}

func (l *Layer) changed() {
	if l.OnChange != nil {
		l.OnChange(l)
	}
}
