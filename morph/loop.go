package morph

import (
	"errors"
	"fmt"
	"time"

	"github.com/phanxgames/constructer/clock"
	"github.com/phanxgames/constructer/svgpath"
)

// DefaultPause is the gap between loop cycles when LoopOptions.PauseBetween
// is zero.
const DefaultPause = 500 * time.Millisecond

// ErrNoPaths is returned by NewLoop for an empty path list.
var ErrNoPaths = errors.New("morph: loop needs at least one path")

// LoopOptions configures a Loop. The embedded Options apply to every cycle;
// OnComplete runs after each one.
type LoopOptions struct {
	Options
	// Once stops the loop after it has returned to the first path.
	Once bool
	// PauseBetween is the wait after each cycle. Zero means DefaultPause and
	// a negative value means no pause.
	PauseBetween time.Duration
}

// Loop morphs through a list of paths, from each one to the next and from
// the last back to the first.
type Loop struct {
	paths []*svgpath.Path
	opts  LoopOptions

	state   State
	index   int
	cycles  int
	stop    bool
	current *Session
	done    chan struct{}

	clk    clock.Clock
	target Target
}

// NewLoop parses every path up front.
func NewLoop(paths []string, opts LoopOptions) (*Loop, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	parsed := make([]*svgpath.Path, len(paths))
	for i, d := range paths {
		p, err := svgpath.Parse(d)
		if err != nil {
			return nil, fmt.Errorf("loop path %d: %w", i, err)
		}
		parsed[i] = p
	}
	opts.Options = opts.Options.withDefaults()
	if opts.Samples < 2 {
		return nil, fmt.Errorf("morph: %w: %d", svgpath.ErrSampleCount, opts.Samples)
	}
	if opts.PauseBetween == 0 {
		opts.PauseBetween = DefaultPause
	}
	return &Loop{paths: parsed, opts: opts, done: make(chan struct{})}, nil
}

// Start begins the first cycle.
func (l *Loop) Start(clk clock.Clock, target Target) error {
	if l.state != Idle {
		return ErrStarted
	}
	l.clk, l.target = clk, target
	l.state = Running
	l.cycle()
	return nil
}

// Stop asks the loop to end. A morph in flight runs to completion and the
// loop stops at the next cycle boundary. Stopping an idle loop ends it
// immediately.
func (l *Loop) Stop() {
	switch l.state {
	case Idle:
		l.finish(Stopped)
	case Running:
		l.stop = true
	}
}

// Halt ends the loop at once as Stopped, cancelling the morph in flight.
// Timers still queued on the clock become no-ops.
func (l *Loop) Halt() {
	if l.current != nil {
		l.current.Cancel()
	}
	l.finish(Stopped)
}

// State returns the loop's lifecycle state.
func (l *Loop) State() State { return l.state }

// Done is closed when the loop stops or, with Once, completes its pass.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Cycles returns the number of morphs that have finished.
func (l *Loop) Cycles() int { return l.cycles }

// Current returns the session of the current or most recent cycle.
func (l *Loop) Current() *Session { return l.current }

func (l *Loop) cycle() {
	if l.stop {
		l.finish(Stopped)
		return
	}
	from := l.paths[l.index]
	to := l.paths[(l.index+1)%len(l.paths)]

	opts := l.opts.Options
	user := opts.OnComplete
	opts.OnComplete = func() {
		if user != nil {
			user()
		}
		l.cycleDone()
	}
	s, err := newSession(from, to, opts)
	if err == nil {
		err = s.Start(l.clk, l.target)
	}
	if err != nil {
		l.opts.Logger.Error("morph loop: cycle failed", "index", l.index, "err", err)
		l.finish(Stopped)
		return
	}
	l.current = s
}

func (l *Loop) cycleDone() {
	l.cycles++
	if l.opts.PauseBetween > 0 {
		l.clk.AfterFunc(l.opts.PauseBetween, l.advance)
		return
	}
	l.advance()
}

func (l *Loop) advance() {
	if l.state != Running {
		return
	}
	l.index = (l.index + 1) % len(l.paths)
	if l.opts.Once && l.index == 0 {
		l.finish(Completed)
		return
	}
	l.cycle()
}

func (l *Loop) finish(st State) {
	if l.state == Completed || l.state == Stopped {
		return
	}
	l.state = st
	l.opts.Logger.Debug("morph loop end", "state", st, "cycles", l.cycles)
	close(l.done)
}
