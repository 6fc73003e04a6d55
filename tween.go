package constructer

import (
	"github.com/tanema/gween"
	gease "github.com/tanema/gween/ease"

	"github.com/phanxgames/constructer/keyframe"
)

// StyleTween drives a keyframe set onto a target over a fixed duration.
// Create one with NewStyleTween or the convenience constructors and either
// call Update(dt) each frame or hand it to Stage.Animate.
//
// There is no global animation manager.
type StyleTween struct {
	tween  *gween.Tween
	set    *keyframe.Set
	target keyframe.Target
	apply  func(t float64)

	// OnComplete runs once, after the final values are applied.
	OnComplete func()
	Done       bool
}

// NewStyleTween animates target through set over duration seconds. The
// easing function shapes overall progress; keyframe offsets are then
// interpolated linearly.
func NewStyleTween(target keyframe.Target, set *keyframe.Set, duration float32, fn gease.TweenFunc) *StyleTween {
	if fn == nil {
		fn = gease.Linear
	}
	return &StyleTween{
		tween:  gween.New(0, 1, duration, fn),
		set:    set,
		target: target,
	}
}

// Update advances the tween by dt seconds and applies the values for the new
// position. The final Update applies progress 1 exactly.
func (g *StyleTween) Update(dt float32) {
	if g.Done {
		return
	}
	val, finished := g.tween.Update(dt)
	t := float64(val)
	if finished {
		t = 1
	}
	g.applyAt(t)
	if finished {
		g.Done = true
		if g.OnComplete != nil {
			g.OnComplete()
		}
	}
}

// Reset rewinds the tween to the start.
func (g *StyleTween) Reset() {
	g.tween.Reset()
	g.Done = false
}

func (g *StyleTween) applyAt(t float64) {
	if g.apply != nil {
		g.apply(t)
		return
	}
	g.target.ApplyProps(keyframe.Interpolate(g.set, t))
}

// TweenOpacity fades l from its current alpha to the target value.
func TweenOpacity(l *Layer, to float64, duration float32, fn gease.TweenFunc) *StyleTween {
	set := keyframe.FromTo(
		keyframe.Props{"opacity": keyframe.Number(l.Alpha, "")},
		keyframe.Props{"opacity": keyframe.Number(to, "")},
	)
	return NewStyleTween(l, set, duration, fn)
}

// TweenPosition moves l from its current position to (toX, toY).
func TweenPosition(l *Layer, toX, toY float64, duration float32, fn gease.TweenFunc) *StyleTween {
	set := keyframe.FromTo(
		keyframe.Props{"x": keyframe.Number(l.X, ""), "y": keyframe.Number(l.Y, "")},
		keyframe.Props{"x": keyframe.Number(toX, ""), "y": keyframe.Number(toY, "")},
	)
	return NewStyleTween(l, set, duration, fn)
}

// TweenScale scales l from its current scale to (toSX, toSY).
func TweenScale(l *Layer, toSX, toSY float64, duration float32, fn gease.TweenFunc) *StyleTween {
	set := keyframe.FromTo(
		keyframe.Props{"scaleX": keyframe.Number(l.ScaleX, ""), "scaleY": keyframe.Number(l.ScaleY, "")},
		keyframe.Props{"scaleX": keyframe.Number(toSX, ""), "scaleY": keyframe.Number(toSY, "")},
	)
	return NewStyleTween(l, set, duration, fn)
}

// TweenRotation rotates l from its current angle to the target in degrees.
func TweenRotation(l *Layer, to float64, duration float32, fn gease.TweenFunc) *StyleTween {
	set := keyframe.FromTo(
		keyframe.Props{"rotate": keyframe.Number(l.Rotation, "deg")},
		keyframe.Props{"rotate": keyframe.Number(to, "deg")},
	)
	return NewStyleTween(l, set, duration, fn)
}

// TweenFill blends l's fill color toward to in HCL space.
func TweenFill(l *Layer, to Color, duration float32, fn gease.TweenFunc) *StyleTween {
	return colorTween(l, &l.Fill, to, duration, fn)
}

// TweenStroke blends l's stroke color toward to in HCL space.
func TweenStroke(l *Layer, to Color, duration float32, fn gease.TweenFunc) *StyleTween {
	return colorTween(l, &l.Stroke, to, duration, fn)
}

func colorTween(l *Layer, field *Color, to Color, duration float32, fn gease.TweenFunc) *StyleTween {
	from := *field
	g := NewStyleTween(l, nil, duration, fn)
	g.apply = func(t float64) {
		if t >= 1 {
			*field = to
		} else {
			*field = from.Blend(to, t)
		}
		l.changed()
	}
	return g
}
