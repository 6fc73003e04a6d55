package keyframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/constructer/clock"
	"github.com/phanxgames/constructer/ease"
)

const frame = 10 * time.Millisecond

type recorder struct {
	frames []Props
}

func (r *recorder) ApplyProps(p Props) { r.frames = append(r.frames, p) }

func (r *recorder) last(name string) string {
	if len(r.frames) == 0 {
		return ""
	}
	return r.frames[len(r.frames)-1][name].String()
}

func fade() *Set {
	return FromTo(P("opacity", "0"), P("opacity", "1"))
}

func TestTimelineSequentialAdd(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	tl := NewTimeline().
		Add(a, fade(), 100*time.Millisecond).
		Add(b, fade(), 50*time.Millisecond)
	assert.Equal(t, 150*time.Millisecond, tl.Duration())
	assert.Equal(t, 2, tl.Len())

	clk := clock.NewManual()
	completions := 0
	require.NoError(t, tl.Play(clk, func() { completions++ }))
	assert.True(t, tl.Playing())

	clk.RunFor(90*time.Millisecond, frame)
	assert.NotEmpty(t, a.frames)
	assert.Empty(t, b.frames, "b starts after a")

	clk.RunFor(110*time.Millisecond, frame)
	assert.Equal(t, "1", a.last("opacity"))
	assert.Equal(t, "1", b.last("opacity"))
	assert.Equal(t, 1, completions)
	assert.False(t, tl.Playing())

	// No frames once complete.
	na, nb := len(a.frames), len(b.frames)
	clk.RunFor(100*time.Millisecond, frame)
	assert.Equal(t, na, len(a.frames))
	assert.Equal(t, nb, len(b.frames))
	assert.Equal(t, 1, completions)
}

func TestTimelineLinearProgress(t *testing.T) {
	r := &recorder{}
	tl := NewTimeline().Add(r, fade(), 100*time.Millisecond, WithEasing(ease.Linear))
	clk := clock.NewManual()
	require.NoError(t, tl.Play(clk, nil))

	clk.Advance(50 * time.Millisecond)
	assert.Equal(t, "0.5", r.last("opacity"))
}

func TestTimelinePlayTwice(t *testing.T) {
	tl := NewTimeline().Add(&recorder{}, fade(), time.Second)
	clk := clock.NewManual()
	require.NoError(t, tl.Play(clk, nil))
	assert.ErrorIs(t, tl.Play(clk, nil), ErrPlaying)
}

func TestTimelineStagger(t *testing.T) {
	rs := []*recorder{{}, {}, {}}
	targets := []Target{rs[0], rs[1], rs[2]}
	tl := NewTimeline().Stagger(targets, fade(), 100*time.Millisecond, 30*time.Millisecond)
	assert.Equal(t, 160*time.Millisecond, tl.Duration())

	clk := clock.NewManual()
	require.NoError(t, tl.Play(clk, nil))
	clk.Advance(20 * time.Millisecond)
	assert.NotEmpty(t, rs[0].frames)
	assert.Empty(t, rs[1].frames)
	assert.Empty(t, rs[2].frames)

	clk.Advance(20 * time.Millisecond)
	assert.NotEmpty(t, rs[1].frames)
	assert.Empty(t, rs[2].frames)

	clk.RunFor(200*time.Millisecond, frame)
	for i, r := range rs {
		assert.Equal(t, "1", r.last("opacity"), "target %d", i)
	}
}

func TestTimelineAtOffsetAndFill(t *testing.T) {
	back, none := &recorder{}, &recorder{}
	tl := NewTimeline().
		Add(back, fade(), 50*time.Millisecond, At(100*time.Millisecond), WithFill(FillBackwards)).
		Add(none, fade(), 50*time.Millisecond, At(100*time.Millisecond), WithFill(FillNone), WithEasing(ease.Linear))
	assert.Equal(t, 150*time.Millisecond, tl.Duration())

	clk := clock.NewManual()
	require.NoError(t, tl.Play(clk, nil))
	clk.RunFor(50*time.Millisecond, frame)
	require.Len(t, back.frames, 1, "backwards fill applies the first frame once")
	assert.Equal(t, "0", back.last("opacity"))
	assert.Empty(t, none.frames)

	clk.RunFor(100*time.Millisecond, frame)
	// FillBackwards does not hold the end; the last applied frame is the
	// final active one.
	assert.NotEqual(t, "", back.last("opacity"))
	assert.NotEqual(t, "1", none.last("opacity"))
	assert.False(t, tl.Playing())
}

func TestTimelineIterations(t *testing.T) {
	r := &recorder{}
	tl := NewTimeline().Add(r, fade(), 100*time.Millisecond, Iterations(3), WithEasing(ease.Linear))
	assert.Equal(t, 300*time.Millisecond, tl.Duration())

	clk := clock.NewManual()
	require.NoError(t, tl.Play(clk, nil))
	clk.Advance(150 * time.Millisecond)
	assert.Equal(t, "0.5", r.last("opacity"), "second iteration restarts")

	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, "1", r.last("opacity"))
}

func TestTimelineResetAndClear(t *testing.T) {
	r := &recorder{}
	tl := NewTimeline().Add(r, fade(), 100*time.Millisecond)
	clk := clock.NewManual()

	done := false
	require.NoError(t, tl.Play(clk, func() { done = true }))
	clk.Advance(frame)
	tl.Reset()
	assert.False(t, tl.Playing())

	n := len(r.frames)
	clk.RunFor(200*time.Millisecond, frame)
	assert.Equal(t, n, len(r.frames), "reset stops frames")
	assert.False(t, done)

	require.NoError(t, tl.Play(clk, func() { done = true }))
	clk.RunFor(200*time.Millisecond, frame)
	assert.True(t, done)

	tl.Clear()
	assert.Zero(t, tl.Duration())
	assert.Zero(t, tl.Len())
}

func TestTimelineEmptyCompletesOnFirstFrame(t *testing.T) {
	clk := clock.NewManual()
	done := 0
	require.NoError(t, NewTimeline().Play(clk, func() { done++ }))
	clk.Advance(frame)
	clk.Advance(frame)
	assert.Equal(t, 1, done)
}

func TestTimelineAddSequence(t *testing.T) {
	seq := NewSequence("grow", 100*time.Millisecond, ease.Linear)
	require.NoError(t, seq.Step(0, P("scale", "1")))
	require.NoError(t, seq.Step(100, P("scale", "2")))

	r := &recorder{}
	tl := NewTimeline().AddSequence(r, seq, WithEasing(ease.In))
	assert.Equal(t, ease.Linear, seq.Easing, "override does not touch the shared sequence")

	clk := clock.NewManual()
	require.NoError(t, tl.Play(clk, nil))
	clk.Advance(50 * time.Millisecond)
	assert.Equal(t, "1.25", r.last("scale"))
}

func TestPropsFunc(t *testing.T) {
	var got Props
	var target Target = PropsFunc(func(p Props) { got = p })
	target.ApplyProps(P("a", "1"))
	assert.Equal(t, "1", got["a"].String())
}

func TestParseFill(t *testing.T) {
	assert.Equal(t, FillBoth, ParseFill("Both"))
	assert.Equal(t, FillNone, ParseFill("none"))
	assert.Equal(t, FillForwards, ParseFill("sideways"))
	assert.Equal(t, "backwards", FillBackwards.String())

	var f Fill
	require.NoError(t, f.UnmarshalText([]byte("backwards")))
	assert.Equal(t, FillBackwards, f)
}
