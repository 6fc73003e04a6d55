// Package keyframe interpolates property maps between keyframes.
//
// A Set holds frames at percentage offsets. Interpolate blends the two
// frames around a progress value: numbers with compatible units are mixed
// linearly and everything else flips from one frame's value to the next
// halfway through the interval.
//
//	set := keyframe.NewSet()
//	set.Add(0, keyframe.P("opacity", "0", "x", "-20px"))
//	set.Add(100, keyframe.P("opacity", "1", "x", "0px"))
//	props := keyframe.Interpolate(set, 0.25) // opacity 0.25, x -15px
//
// Sequences attach a duration and easing to a set, a Library names them,
// and a Timeline plays many of them against targets on a clock.Clock.
package keyframe
