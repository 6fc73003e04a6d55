package constructer

import (
	"math"

	"github.com/tanema/gween"
	gease "github.com/tanema/gween/ease"

	"github.com/phanxgames/constructer/keyframe"
)

// Viewport is the visible window onto a document taller than the screen.
// ScrollY is the document coordinate at the top edge of the screen.
// Scroll-linked effects registered with ScrollAnimate and Parallax are
// re-evaluated whenever ScrollY changes.
type Viewport struct {
	ScrollY float64
	Width   float64
	Height  float64

	// DocumentHeight, when positive, clamps ScrollY to
	// [0, DocumentHeight-Height].
	DocumentHeight float64

	stage   *Stage
	scroll  *gween.Tween
	handles []*ScrollHandle
	applied float64
	dirty   bool
}

func newViewport(s *Stage, w, h float64) *Viewport {
	return &Viewport{stage: s, Width: w, Height: h}
}

// ScrollTo animates ScrollY to y over duration seconds. A duration of zero
// or less jumps immediately.
func (v *Viewport) ScrollTo(y float64, duration float32, fn gease.TweenFunc) {
	y = v.clamp(y)
	if duration <= 0 {
		v.scroll = nil
		v.SetScroll(y)
		return
	}
	if fn == nil {
		fn = gease.InOutQuad
	}
	v.scroll = gween.New(float32(v.ScrollY), float32(y), duration, fn)
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport) Scrolling() bool { return v.scroll != nil }

// SetScroll jumps to y and re-evaluates scroll effects.
func (v *Viewport) SetScroll(y float64) {
	v.ScrollY = v.clamp(y)
	v.refresh()
}

// ScrollBy moves the viewport by dy.
func (v *Viewport) ScrollBy(dy float64) {
	v.SetScroll(v.ScrollY + dy)
}

func (v *Viewport) clamp(y float64) float64 {
	if v.DocumentHeight <= 0 {
		return y
	}
	return math.Max(0, math.Min(y, v.DocumentHeight-v.Height))
}

// ScrollProgress measures how far r has travelled through the viewport:
// 0 while its top is at or below the bottom edge, 1 once its bottom has
// passed the top edge, linear in between.
func (v *Viewport) ScrollProgress(r Rect) float64 {
	denom := v.Height + r.Height
	if denom <= 0 {
		return 0
	}
	top := r.Y - v.ScrollY
	return clamp01(1 - (top+r.Height)/denom)
}

// view returns the document-to-screen matrix.
func (v *Viewport) view() [6]float64 {
	return [6]float64{1, 0, 0, 1, 0, -v.ScrollY}
}

// update advances the scroll tween and re-applies effects when the scroll
// position moved. Called from Stage.Step.
func (v *Viewport) update(dt float32) {
	if v.scroll != nil {
		val, done := v.scroll.Update(dt)
		v.ScrollY = float64(val)
		if done {
			v.scroll = nil
		}
	}
	if v.dirty || v.ScrollY != v.applied {
		v.refresh()
	}
}

func (v *Viewport) refresh() {
	v.applied = v.ScrollY
	v.dirty = false
	for _, h := range v.handles {
		h.apply()
	}
}

type effectKind uint8

const (
	effectAnimate effectKind = iota
	effectParallax
)

// ScrollHandle is a registered scroll effect. Destroy detaches it.
type ScrollHandle struct {
	vp     *Viewport
	kind   effectKind
	layer  *Layer
	set    *keyframe.Set
	speed  float64
	origin Rect
	baseY  float64

	progress float64
}

// ScrollAnimate ties l's style to its scroll progress: the set is
// interpolated at ScrollProgress of the layer's document bounds. The bounds
// are captured now so the animation cannot feed back into its own progress;
// call Refresh after moving the layer.
func (v *Viewport) ScrollAnimate(l *Layer, set *keyframe.Set) *ScrollHandle {
	h := &ScrollHandle{vp: v, kind: effectAnimate, layer: l, set: set}
	return v.register(h)
}

// Parallax offsets l vertically by (center - Height/2) * speed, where
// center is the layer's vertical midpoint in screen space. Positive speeds
// lag behind the scroll; negative speeds lead it.
func (v *Viewport) Parallax(l *Layer, speed float64) *ScrollHandle {
	h := &ScrollHandle{vp: v, kind: effectParallax, layer: l, speed: speed}
	return v.register(h)
}

func (v *Viewport) register(h *ScrollHandle) *ScrollHandle {
	h.capture()
	v.handles = append(v.handles, h)
	h.apply()
	return h
}

// Handles returns the number of active scroll effects.
func (v *Viewport) Handles() int { return len(v.handles) }

// Progress returns the last progress applied by a ScrollAnimate handle.
func (h *ScrollHandle) Progress() float64 { return h.progress }

// Refresh recaptures the layer's document bounds and re-applies the effect.
func (h *ScrollHandle) Refresh() {
	if h.kind == effectParallax {
		h.layer.Y = h.baseY
	}
	h.capture()
	h.apply()
}

// Destroy detaches the effect. Parallax handles restore the layer's
// original vertical position.
func (h *ScrollHandle) Destroy() {
	v := h.vp
	if v == nil {
		return
	}
	for i, other := range v.handles {
		if other == h {
			v.handles = append(v.handles[:i], v.handles[i+1:]...)
			break
		}
	}
	if h.kind == effectParallax {
		h.layer.Y = h.baseY
		h.layer.changed()
	}
	h.vp = nil
}

func (h *ScrollHandle) capture() {
	h.origin = h.layer.DocumentBounds()
	h.baseY = h.layer.Y
}

func (h *ScrollHandle) apply() {
	v := h.vp
	switch h.kind {
	case effectAnimate:
		h.progress = v.ScrollProgress(h.origin)
		h.layer.ApplyProps(keyframe.Interpolate(h.set, h.progress))
	case effectParallax:
		center := h.origin.Y + h.origin.Height/2 - v.ScrollY
		h.layer.Y = h.baseY + (center-v.Height/2)*h.speed
		h.layer.changed()
	}
}
