package keyframe

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phanxgames/constructer/clock"
	"github.com/phanxgames/constructer/ease"
)

// ErrPlaying is returned by Play while the timeline is already running.
var ErrPlaying = errors.New("keyframe: timeline already playing")

// Target receives interpolated properties.
type Target interface {
	ApplyProps(Props)
}

// PropsFunc adapts a function to Target.
type PropsFunc func(Props)

// ApplyProps calls f(p).
func (f PropsFunc) ApplyProps(p Props) { f(p) }

// Fill controls whether an entry's edge frames are applied outside its
// active interval.
type Fill uint8

const (
	// FillForwards holds the last frame after the entry ends.
	FillForwards Fill = iota
	// FillBackwards applies the first frame while the entry waits to start.
	FillBackwards
	// FillBoth does both.
	FillBoth
	// FillNone applies nothing outside the active interval.
	FillNone
)

var fillNames = [...]string{"forwards", "backwards", "both", "none"}

func (f Fill) String() string {
	if int(f) < len(fillNames) {
		return fillNames[f]
	}
	return fmt.Sprintf("Fill(%d)", f)
}

// ParseFill maps "forwards", "backwards", "both" and "none" to a Fill.
// Anything else is FillForwards.
func ParseFill(name string) Fill {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range fillNames {
		if n == name {
			return Fill(i)
		}
	}
	return FillForwards
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fill) UnmarshalText(b []byte) error {
	*f = ParseFill(string(b))
	return nil
}

func (f Fill) backwards() bool { return f == FillBackwards || f == FillBoth }
func (f Fill) forwards() bool  { return f == FillForwards || f == FillBoth }

type entryConfig struct {
	offset     time.Duration
	hasOffset  bool
	easing     ease.Kind
	iterations int
	fill       Fill
}

// EntryOption configures one timeline entry.
type EntryOption func(*entryConfig)

// At starts the entry at offset from the start of the timeline instead of
// after everything added so far.
func At(offset time.Duration) EntryOption {
	return func(c *entryConfig) {
		c.offset = offset
		c.hasOffset = true
	}
}

// WithEasing sets the entry's easing. The default is ease.InOut.
func WithEasing(k ease.Kind) EntryOption {
	return func(c *entryConfig) { c.easing = k }
}

// Iterations repeats the entry n times. Values below 1 mean once.
func Iterations(n int) EntryOption {
	return func(c *entryConfig) { c.iterations = n }
}

// WithFill sets the entry's fill mode. The default is FillForwards.
func WithFill(f Fill) EntryOption {
	return func(c *entryConfig) { c.fill = f }
}

type entryPhase uint8

const (
	phasePending entryPhase = iota
	phaseActive
	phaseDone
)

type entry struct {
	target     Target
	seq        *Sequence
	start      time.Duration
	iterations int
	fill       Fill

	phase  entryPhase
	primed bool
}

func (e *entry) end() time.Duration {
	return e.start + e.seq.Duration*time.Duration(e.iterations)
}

// Timeline schedules keyframe sets against targets on a shared clock.
// Entries are added with a builder API; Play drives them frame by frame.
//
//	tl := keyframe.NewTimeline().
//		Add(title, fadeIn, 400*time.Millisecond).
//		Stagger(items, slideUp, 300*time.Millisecond, 80*time.Millisecond)
//	err := tl.Play(clk, func() { ... })
type Timeline struct {
	entries  []*entry
	duration time.Duration
	logger   *slog.Logger

	playing    bool
	gen        uint64
	startAt    time.Duration
	onComplete func()
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// SetLogger sets the logger used for play and completion messages.
func (tl *Timeline) SetLogger(l *slog.Logger) *Timeline {
	tl.logger = l
	return tl
}

func (tl *Timeline) log() *slog.Logger {
	if tl.logger != nil {
		return tl.logger
	}
	return slog.Default()
}

// Add schedules set on target for d. Without At the entry starts when the
// timeline as built so far ends.
func (tl *Timeline) Add(target Target, set *Set, d time.Duration, opts ...EntryOption) *Timeline {
	cfg := entryConfig{offset: tl.duration, iterations: 1}
	for _, o := range opts {
		o(&cfg)
	}
	seq := &Sequence{
		Name:     fmt.Sprintf("tl-%d", len(tl.entries)),
		Duration: d,
		Easing:   cfg.easing,
		Set:      set,
	}
	return tl.add(target, seq, cfg)
}

// AddSequence schedules an existing sequence on target. The sequence's own
// easing is used unless WithEasing overrides it.
func (tl *Timeline) AddSequence(target Target, seq *Sequence, opts ...EntryOption) *Timeline {
	cfg := entryConfig{offset: tl.duration, iterations: 1, easing: seq.Easing}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.easing != seq.Easing {
		cp := *seq
		cp.Easing = cfg.easing
		seq = &cp
	}
	return tl.add(target, seq, cfg)
}

func (tl *Timeline) add(target Target, seq *Sequence, cfg entryConfig) *Timeline {
	if cfg.iterations < 1 {
		cfg.iterations = 1
	}
	if seq.Duration < 0 {
		seq.Duration = 0
	}
	if cfg.offset < 0 {
		cfg.offset = 0
	}
	e := &entry{
		target:     target,
		seq:        seq,
		start:      cfg.offset,
		iterations: cfg.iterations,
		fill:       cfg.fill,
	}
	tl.entries = append(tl.entries, e)
	tl.duration = max(tl.duration, e.end())
	return tl
}

// Stagger adds set for each target, each starting delay after the previous
// one. The first starts where the timeline currently ends.
func (tl *Timeline) Stagger(targets []Target, set *Set, d, delay time.Duration, opts ...EntryOption) *Timeline {
	base := tl.duration
	for i, t := range targets {
		o := append(opts[:len(opts):len(opts)], At(base+time.Duration(i)*delay))
		tl.Add(t, set, d, o...)
	}
	return tl
}

// Duration returns when the last entry ends.
func (tl *Timeline) Duration() time.Duration { return tl.duration }

// Len returns the number of entries.
func (tl *Timeline) Len() int { return len(tl.entries) }

// Playing reports whether the timeline is running.
func (tl *Timeline) Playing() bool { return tl.playing }

// Play starts the timeline on clk. onComplete, if set, runs once after the
// frame that reaches the end.
func (tl *Timeline) Play(clk clock.Clock, onComplete func()) error {
	if tl.playing {
		return ErrPlaying
	}
	tl.playing = true
	tl.gen++
	tl.startAt = clk.Now()
	tl.onComplete = onComplete
	for _, e := range tl.entries {
		e.phase = phasePending
		e.primed = false
	}
	tl.log().Debug("timeline play", "entries", len(tl.entries), "duration", tl.duration)

	gen := tl.gen
	var frame func(now time.Duration)
	frame = func(now time.Duration) {
		if gen != tl.gen || !tl.playing {
			return
		}
		elapsed := now - tl.startAt
		for _, e := range tl.entries {
			tl.step(e, elapsed)
		}
		if elapsed < tl.duration {
			clk.RequestFrame(frame)
			return
		}
		tl.playing = false
		tl.log().Debug("timeline complete", "elapsed", elapsed)
		if fn := tl.onComplete; fn != nil {
			tl.onComplete = nil
			fn()
		}
	}
	clk.RequestFrame(frame)
	return nil
}

func (tl *Timeline) step(e *entry, elapsed time.Duration) {
	if e.phase == phaseDone {
		return
	}
	local := elapsed - e.start
	switch {
	case local < 0:
		if e.fill.backwards() && !e.primed {
			e.primed = true
			e.target.ApplyProps(e.seq.At(0))
		}
	case elapsed >= e.end():
		e.phase = phaseDone
		if e.fill.forwards() {
			e.target.ApplyProps(e.seq.At(1))
		}
	default:
		e.phase = phaseActive
		e.target.ApplyProps(e.seq.At(iterationProgress(local, e.seq.Duration)))
	}
}

func iterationProgress(local, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	return float64(local%d) / float64(d)
}

// Reset stops playback. Entries are kept and Play may be called again.
func (tl *Timeline) Reset() *Timeline {
	tl.playing = false
	tl.gen++
	tl.onComplete = nil
	for _, e := range tl.entries {
		e.phase = phasePending
		e.primed = false
	}
	return tl
}

// Clear stops playback and removes every entry.
func (tl *Timeline) Clear() *Timeline {
	tl.Reset()
	tl.entries = nil
	tl.duration = 0
	return tl
}
