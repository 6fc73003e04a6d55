package keyframe

// Interpolate returns the properties of set at progress, a fraction in 0..1
// that is clamped before use.
//
// The pair of frames whose offsets bracket progress*100 is blended; when no
// pair brackets it (progress before the first frame or after the last) the
// first and last frames are used and the local progress clamps to whichever
// end is nearer. A property present on only one side of the pair holds that
// value across the interval.
func Interpolate(set *Set, progress float64) Props {
	if set.Len() == 0 {
		return Props{}
	}
	frames := set.frames
	if len(frames) == 1 {
		return frames[0].Props.Clone()
	}

	pc := clamp01(progress) * 100
	lo, hi := frames[0], frames[len(frames)-1]
	for i := 0; i < len(frames)-1; i++ {
		if pc >= frames[i].Offset && pc <= frames[i+1].Offset {
			lo, hi = frames[i], frames[i+1]
			break
		}
	}

	span := hi.Offset - lo.Offset
	if span == 0 {
		span = 1
	}
	local := clamp01((pc - lo.Offset) / span)

	out := make(Props, len(lo.Props)+len(hi.Props))
	for name, from := range lo.Props {
		to, ok := hi.Props[name]
		if !ok {
			to = from
		}
		out[name] = Lerp(from, to, local)
	}
	for name, to := range hi.Props {
		if _, ok := lo.Props[name]; !ok {
			out[name] = to
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
