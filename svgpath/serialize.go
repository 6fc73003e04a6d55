package svgpath

import (
	"strconv"
	"strings"
)

// Serialize connects points with straight line segments, in order, and
// closes the result. Coordinates are written with two decimals. An empty
// sequence yields an empty description.
func Serialize(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(points) * 16)
	for i, pt := range points {
		if i == 0 {
			sb.WriteByte('M')
		} else {
			sb.WriteString(" L")
		}
		sb.WriteString(strconv.FormatFloat(pt.X, 'f', 2, 64))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(pt.Y, 'f', 2, 64))
	}
	sb.WriteString(" Z")
	return sb.String()
}
