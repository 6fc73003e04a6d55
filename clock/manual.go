package clock

import (
	"container/heap"
	"time"
)

// Manual is a Clock that only moves when Advance is called.
//
// Each step first fires every timer that has come due, in due order, then
// runs the frame callbacks that were requested before the step began.
// Callbacks requested while a step is running are picked up by the next one.
type Manual struct {
	now    time.Duration
	frames []func(time.Duration)
	timers timerQueue
	seq    uint64
	steps  int
}

// NewManual returns a Manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Duration { return m.now }

// Steps returns how many times Advance has moved the clock.
func (m *Manual) Steps() int { return m.steps }

// RequestFrame queues fn for the next step.
func (m *Manual) RequestFrame(fn func(now time.Duration)) {
	if fn == nil {
		return
	}
	m.frames = append(m.frames, fn)
}

// AfterFunc queues fn to fire on the first step that reaches now+d.
// Negative delays are treated as zero.
func (m *Manual) AfterFunc(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	m.seq++
	heap.Push(&m.timers, &timer{at: m.now + d, seq: m.seq, fn: fn})
}

// Pending returns the number of queued frame callbacks and timers.
func (m *Manual) Pending() (frames, timers int) {
	return len(m.frames), len(m.timers)
}

// Advance moves the clock forward by dt and runs whatever came due.
// A non-positive dt does nothing.
func (m *Manual) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	m.now += dt
	m.steps++

	// Snapshot before timers fire so frames they request wait a step.
	frames := m.frames
	m.frames = nil

	for len(m.timers) > 0 && m.timers[0].at <= m.now {
		t := heap.Pop(&m.timers).(*timer)
		t.fn()
	}

	now := m.now
	for _, fn := range frames {
		fn(now)
	}
}

// RunFor advances the clock in increments of step until total has elapsed.
// The last increment is shortened so the clock lands exactly on the target.
func (m *Manual) RunFor(total, step time.Duration) {
	if step <= 0 {
		m.Advance(total)
		return
	}
	end := m.now + total
	for m.now < end {
		dt := step
		if rest := end - m.now; rest < dt {
			dt = rest
		}
		m.Advance(dt)
	}
}

// RunUntil advances the clock by step until done returns true or limit steps
// have run. It reports whether done was satisfied.
func (m *Manual) RunUntil(step time.Duration, limit int, done func() bool) bool {
	for i := 0; i < limit; i++ {
		if done() {
			return true
		}
		m.Advance(step)
	}
	return done()
}

type timer struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// timerQueue orders timers by due time, then by scheduling order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timerQueue) Push(x any) { *q = append(*q, x.(*timer)) }

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
