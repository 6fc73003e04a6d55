package constructer

import (
	"math"
	"strings"

	"github.com/phanxgames/constructer/keyframe"
)

// ApplyProps implements keyframe.Target. Known properties map onto the
// layer's fields; everything else is kept as a style string readable with
// Style. Values that do not fit a field (a color that does not parse, a
// token where a number is needed) are stored as style strings too.
func (l *Layer) ApplyProps(p keyframe.Props) {
	for name, v := range p {
		if !l.applyProp(name, v) {
			l.SetStyle(name, v.String())
		}
	}
	l.changed()
}

func (l *Layer) applyProp(name string, v keyframe.Value) bool {
	switch name {
	case "opacity", "alpha":
		f, ok := number(v)
		if ok {
			l.Alpha = clamp01(f)
		}
		return ok
	case "x", "translateX":
		return setFloat(&l.X, v)
	case "y", "translateY":
		return setFloat(&l.Y, v)
	case "scale":
		f, ok := number(v)
		if ok {
			l.ScaleX, l.ScaleY = f, f
		}
		return ok
	case "scaleX":
		return setFloat(&l.ScaleX, v)
	case "scaleY":
		return setFloat(&l.ScaleY, v)
	case "rotate", "rotation":
		f, ok := v.Float()
		if !ok {
			return false
		}
		l.Rotation = toDegrees(f, v.Unit())
		return true
	case "strokeWidth", "stroke-width":
		return setFloat(&l.StrokeWidth, v)
	case "fill":
		return setColor(&l.Fill, v)
	case "stroke":
		return setColor(&l.Stroke, v)
	case "d":
		if err := l.setPath(v.String()); err != nil {
			logger.Warn("layer: ignoring invalid path data", "layer", l.ID, "err", err)
		}
		return true
	case "startOffset", "start-offset":
		if l.Text == nil || !v.IsNumeric() {
			return false
		}
		l.Text.StartOffset = v
		return true
	case "letterSpacing", "letter-spacing":
		if l.Text == nil {
			return false
		}
		return setFloat(&l.Text.LetterSpacing, v)
	case "textAnchor", "text-anchor":
		if l.Text == nil {
			return false
		}
		l.Text.Anchor = ParseTextAnchor(v.String())
		return true
	case "visibility":
		l.Visible = !strings.EqualFold(v.String(), "hidden")
		return true
	case "display":
		l.Visible = !strings.EqualFold(v.String(), "none")
		return true
	}
	return false
}

// number reads a numeric value. Percentages are scaled to fractions.
func number(v keyframe.Value) (float64, bool) {
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	if v.Unit() == "%" {
		f /= 100
	}
	return f, true
}

func setFloat(dst *float64, v keyframe.Value) bool {
	f, ok := v.Float()
	if ok {
		*dst = f
	}
	return ok
}

func setColor(dst *Color, v keyframe.Value) bool {
	c, err := ParseColor(v.String())
	if err != nil {
		return false
	}
	*dst = c
	return true
}

func toDegrees(f float64, unit string) float64 {
	switch unit {
	case "rad":
		return f * 180 / math.Pi
	case "turn":
		return f * 360
	case "grad":
		return f * 0.9
	}
	return f
}

// Props reports the layer's animatable state in the same vocabulary
// ApplyProps accepts.
func (l *Layer) Props() keyframe.Props {
	p := keyframe.Props{
		"opacity":     keyframe.Number(l.Alpha, ""),
		"x":           keyframe.Number(l.X, ""),
		"y":           keyframe.Number(l.Y, ""),
		"scaleX":      keyframe.Number(l.ScaleX, ""),
		"scaleY":      keyframe.Number(l.ScaleY, ""),
		"rotate":      keyframe.Number(l.Rotation, "deg"),
		"strokeWidth": keyframe.Number(l.StrokeWidth, ""),
		"fill":        keyframe.Token(l.Fill.Hex()),
		"stroke":      keyframe.Token(l.Stroke.Hex()),
	}
	if l.pathData != "" {
		p["d"] = keyframe.Token(l.pathData)
	}
	if l.Text != nil {
		p["startOffset"] = l.Text.StartOffset
		p["letterSpacing"] = keyframe.Number(l.Text.LetterSpacing, "")
		p["textAnchor"] = keyframe.Token(l.Text.Anchor.String())
	}
	for k, v := range l.style {
		p[k] = keyframe.ParseValue(v)
	}
	return p
}
