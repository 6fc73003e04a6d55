// Package morph animates one vector path into another.
//
// Both paths are resampled to the same number of points spaced evenly by
// arc length, so shapes with different command structures can be blended
// point by point. A Session runs one morph on a clock.Clock; a Loop cycles
// through a list of shapes.
package morph

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phanxgames/constructer/clock"
	"github.com/phanxgames/constructer/ease"
	"github.com/phanxgames/constructer/svgpath"
)

// DefaultDuration is used when Options.Duration is not positive.
const DefaultDuration = 500 * time.Millisecond

// ErrStarted is returned when Start is called on a driver that has already
// been started.
var ErrStarted = errors.New("morph: already started")

// State is the lifecycle stage of a session or loop.
type State uint8

const (
	Idle State = iota
	Running
	Completed
	Stopped
)

var stateNames = [...]string{"idle", "running", "completed", "stopped"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Target receives path data for every frame.
type Target interface {
	SetPathData(d string)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(d string)

// SetPathData calls f(d).
func (f TargetFunc) SetPathData(d string) { f(d) }

// Sampler turns a path into n points.
type Sampler func(p *svgpath.Path, n int) ([]svgpath.Point, error)

// ArcLength samples n points evenly spaced along the path. It is the
// default Sampler.
func ArcLength(p *svgpath.Path, n int) ([]svgpath.Point, error) {
	return p.Sample(n)
}

// Options configures a morph.
type Options struct {
	// Duration of the morph. Zero or negative means DefaultDuration.
	Duration time.Duration
	// Easing applied to linear time progress. The zero value is ease.InOut.
	Easing ease.Kind
	// Samples per path. Zero or negative means svgpath.DefaultSamples.
	Samples int
	// OnUpdate receives the eased progress after each frame is applied.
	OnUpdate func(t float64)
	// OnComplete runs once after the final frame.
	OnComplete func()
	// Sampler overrides arc-length sampling.
	Sampler Sampler
	// PadMismatch repeats the last point of the shorter sample sequence
	// when the two paths sample to different counts. By default the longer
	// sequence is truncated.
	PadMismatch bool
	// Logger receives sample mismatch warnings. Nil means slog.Default.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Samples <= 0 {
		o.Samples = svgpath.DefaultSamples
	}
	if o.Sampler == nil {
		o.Sampler = ArcLength
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Session morphs one path into another.
type Session struct {
	from, to *svgpath.Path
	opts     Options

	state  State
	start  time.Duration
	a, b   []svgpath.Point
	frames int
	done   chan struct{}

	clk    clock.Clock
	target Target
}

// New parses both path descriptions and returns an idle session.
func New(from, to string, opts Options) (*Session, error) {
	fp, err := svgpath.Parse(from)
	if err != nil {
		return nil, fmt.Errorf("morph from: %w", err)
	}
	tp, err := svgpath.Parse(to)
	if err != nil {
		return nil, fmt.Errorf("morph to: %w", err)
	}
	return newSession(fp, tp, opts)
}

func newSession(from, to *svgpath.Path, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	if opts.Samples < 2 {
		return nil, fmt.Errorf("morph: %w: %d", svgpath.ErrSampleCount, opts.Samples)
	}
	return &Session{
		from: from,
		to:   to,
		opts: opts,
		done: make(chan struct{}),
	}, nil
}

// Run creates a session and starts it.
func Run(clk clock.Clock, target Target, from, to string, opts Options) (*Session, error) {
	s, err := New(from, to, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Start(clk, target); err != nil {
		return nil, err
	}
	return s, nil
}

// Start samples both paths and schedules the first frame. A session can
// only be started once.
func (s *Session) Start(clk clock.Clock, target Target) error {
	if s.state != Idle {
		return ErrStarted
	}
	a, err := s.opts.Sampler(s.from, s.opts.Samples)
	if err != nil {
		return fmt.Errorf("sample from path: %w", err)
	}
	b, err := s.opts.Sampler(s.to, s.opts.Samples)
	if err != nil {
		return fmt.Errorf("sample to path: %w", err)
	}
	if len(a) != len(b) {
		s.opts.Logger.Warn("morph: point count mismatch after sampling",
			"from", len(a), "to", len(b), "pad", s.opts.PadMismatch)
		if s.opts.PadMismatch {
			n := max(len(a), len(b))
			a, b = svgpath.Pad(a, n), svgpath.Pad(b, n)
		}
	}

	s.a, s.b = a, b
	s.clk, s.target = clk, target
	s.start = clk.Now()
	s.state = Running
	s.opts.Logger.Debug("morph start",
		"from", abbrev(s.from.String()),
		"to", abbrev(s.to.String()),
		"duration", s.opts.Duration)
	clk.RequestFrame(s.tick)
	return nil
}

func (s *Session) tick(now time.Duration) {
	if s.state != Running {
		return
	}
	raw := float64(now-s.start) / float64(s.opts.Duration)
	if raw < 0 {
		raw = 0
	} else if raw > 1 {
		raw = 1
	}
	t := ease.Apply(raw, s.opts.Easing)

	s.target.SetPathData(svgpath.Serialize(svgpath.Lerp(s.a, s.b, t)))
	s.frames++
	if s.opts.OnUpdate != nil {
		s.opts.OnUpdate(t)
	}
	if raw < 1 {
		s.clk.RequestFrame(s.tick)
		return
	}

	s.target.SetPathData(s.to.String())
	s.state = Completed
	s.opts.Logger.Debug("morph complete", "frames", s.frames)
	if s.opts.OnComplete != nil {
		s.opts.OnComplete()
	}
	close(s.done)
}

// Cancel ends a running session as Stopped without applying the final
// frame or calling OnComplete. The target keeps the last frame it received.
func (s *Session) Cancel() {
	if s.state != Running {
		return
	}
	s.state = Stopped
	s.opts.Logger.Debug("morph cancelled", "frames", s.frames)
	close(s.done)
}

// State returns the session's lifecycle state.
func (s *Session) State() State { return s.state }

// Done is closed after the final frame and OnComplete, or by Cancel.
func (s *Session) Done() <-chan struct{} { return s.done }

// Frames returns how many interpolated frames have been emitted.
func (s *Session) Frames() int { return s.frames }

// Duration returns the effective duration.
func (s *Session) Duration() time.Duration { return s.opts.Duration }

// SampleCounts returns how many points each side holds after sampling and
// any padding. Both are zero before Start.
func (s *Session) SampleCounts() (from, to int) { return len(s.a), len(s.b) }

// Mismatched reports whether the two paths sampled to different counts, in
// which case frames are truncated to the shorter one.
func (s *Session) Mismatched() bool { return len(s.a) != len(s.b) }

// From returns the source path.
func (s *Session) From() *svgpath.Path { return s.from }

// To returns the destination path.
func (s *Session) To() *svgpath.Path { return s.to }

func abbrev(d string) string {
	const n = 50
	if len(d) <= n {
		return d
	}
	return d[:n] + "..."
}
