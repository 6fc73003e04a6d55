// Package clock provides the frame scheduler that animation drivers run on.
//
// Drivers never read wall time directly. They ask a Clock for the current
// timestamp, request a callback for the next frame, and schedule delayed
// work. The Stage in the root package owns a Manual clock and steps it once
// per ebiten tick; tests step a Manual clock by hand.
package clock

import "time"

// Clock schedules frame callbacks and timers. Implementations are not safe
// for concurrent use; everything runs on the goroutine that steps the clock.
type Clock interface {
	// Now returns the time elapsed since the clock started.
	Now() time.Duration
	// RequestFrame runs fn once on the next frame with that frame's timestamp.
	RequestFrame(fn func(now time.Duration))
	// AfterFunc runs fn once the clock has advanced by at least d.
	AfterFunc(d time.Duration, fn func())
}
