package constructer

import (
	"math"
	"testing"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/phanxgames/constructer/keyframe"
)

func TestScrollProgress(t *testing.T) {
	st := NewStage(800, 600)
	vp := st.Viewport()

	tests := []struct {
		name string
		r    Rect
		want float64
	}{
		{"below the fold", Rect{Y: 600, Height: 100}, 0},
		{"far below", Rect{Y: 5000, Height: 100}, 0},
		{"centered", Rect{Y: 250, Height: 100}, 0.5},
		{"scrolled past", Rect{Y: -100, Height: 100}, 1},
		{"far above", Rect{Y: -5000, Height: 100}, 1},
	}
	for _, tt := range tests {
		assertNear(t, tt.name, vp.ScrollProgress(tt.r), tt.want)
	}

	vp.SetScroll(100)
	assertNear(t, "after scroll", vp.ScrollProgress(Rect{Y: 350, Height: 100}), 0.5)
}

func TestScrollProgressEmptyViewport(t *testing.T) {
	st := NewStage(0, 0)
	if p := st.Viewport().ScrollProgress(Rect{}); p != 0 {
		t.Errorf("progress = %f, want 0", p)
	}
}

func TestScrollClampsToDocument(t *testing.T) {
	st := NewStage(800, 600)
	vp := st.Viewport()
	vp.DocumentHeight = 1000
	vp.SetScroll(900)
	assertNear(t, "max", vp.ScrollY, 400)
	vp.ScrollBy(-1000)
	assertNear(t, "min", vp.ScrollY, 0)
}

func TestScrollAnimate(t *testing.T) {
	st := NewStage(800, 600)
	vp := st.Viewport()
	l := NewLayer("card")
	l.Bounds = Rect{Y: 250, Width: 100, Height: 100}

	h := vp.ScrollAnimate(l, keyframe.FromTo(keyframe.P("opacity", "0"), keyframe.P("opacity", "1")))
	assertNear(t, "initial alpha", l.Alpha, 0.5)
	assertNear(t, "progress", h.Progress(), 0.5)

	vp.SetScroll(350)
	assertNear(t, "scrolled alpha", l.Alpha, 1)

	h.Destroy()
	vp.SetScroll(0)
	assertNear(t, "alpha after destroy", l.Alpha, 1)
	if vp.Handles() != 0 {
		t.Errorf("Handles() = %d, want 0", vp.Handles())
	}
	h.Destroy() // second call is a no-op
}

func TestScrollToDrivesEffects(t *testing.T) {
	st := NewStage(800, 600)
	vp := st.Viewport()
	l := NewLayer("card")
	l.Bounds = Rect{Y: 250, Width: 100, Height: 100}
	vp.ScrollAnimate(l, keyframe.FromTo(keyframe.P("opacity", "0"), keyframe.P("opacity", "1")))

	vp.ScrollTo(350, 1.0, ease.Linear)
	if !vp.Scrolling() {
		t.Fatal("Scrolling() = false")
	}
	st.Step(500 * time.Millisecond)
	if math.Abs(vp.ScrollY-175) > 0.01 {
		t.Errorf("ScrollY = %f, want ~175", vp.ScrollY)
	}
	if math.Abs(l.Alpha-0.75) > 0.01 {
		t.Errorf("Alpha = %f, want ~0.75", l.Alpha)
	}

	st.Step(500 * time.Millisecond)
	if vp.Scrolling() {
		t.Error("scroll tween still active")
	}
	if math.Abs(vp.ScrollY-350) > 0.01 {
		t.Errorf("ScrollY = %f, want 350", vp.ScrollY)
	}
}

func TestScrollToZeroDurationJumps(t *testing.T) {
	st := NewStage(800, 600)
	vp := st.Viewport()
	vp.ScrollTo(120, 0, nil)
	if vp.ScrollY != 120 || vp.Scrolling() {
		t.Errorf("ScrollY = %f scrolling=%v", vp.ScrollY, vp.Scrolling())
	}
}

func TestParallax(t *testing.T) {
	st := NewStage(800, 600)
	vp := st.Viewport()
	l := NewLayer("bg")
	l.Y = 7
	l.Bounds = Rect{Y: 250, Width: 100, Height: 100}

	h := vp.Parallax(l, 0.5)
	assertNear(t, "centered", l.Y, 7)

	vp.SetScroll(100)
	// Center moves from 300 to 200 on screen: (200-300)*0.5 = -50.
	assertNear(t, "scrolled", l.Y, -43)

	vp.SetScroll(-100)
	assertNear(t, "negative scroll", l.Y, 57)

	h.Destroy()
	assertNear(t, "restored", l.Y, 7)
}

func TestResizeReappliesEffects(t *testing.T) {
	st := NewStage(800, 600)
	l := NewLayer("bg")
	l.Bounds = Rect{Y: 250, Width: 100, Height: 100}
	st.Viewport().Parallax(l, 1)

	st.SetSize(800, 400)
	st.Step(time.Millisecond)
	// Center 300 against a half-height of 200.
	assertNear(t, "after resize", l.Y, 100)
}
