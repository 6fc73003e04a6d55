package svgpath

import (
	"errors"
	"fmt"
	"math"

	pstrconv "github.com/tdewolff/parse/v2/strconv"
)

// ErrSyntax is wrapped by every error Parse returns for a malformed path.
var ErrSyntax = errors.New("svgpath: syntax error")

func syntaxErr(offset int, format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, offset, fmt.Sprintf(format, args...))
}

func isSep(c byte) bool {
	return c == ' ' || c == ',' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}

// scanner walks a path description byte by byte.
type scanner struct {
	b []byte
	i int
}

func (s *scanner) skipSeps() {
	for s.i < len(s.b) && isSep(s.b[s.i]) {
		s.i++
	}
}

func (s *scanner) skipSpaces() {
	for s.i < len(s.b) && isSpace(s.b[s.i]) {
		s.i++
	}
}

func (s *scanner) done() bool {
	return s.i >= len(s.b)
}

// hasNumber reports whether another argument follows, which continues the
// previous command implicitly.
func (s *scanner) hasNumber() bool {
	s.skipSeps()
	if s.done() {
		return false
	}
	c := s.b[s.i]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (s *scanner) num() (float64, error) {
	s.skipSeps()
	if s.done() {
		return 0, syntaxErr(s.i, "expected number, got end of path")
	}
	f, n := pstrconv.ParseFloat(s.b[s.i:])
	if n == 0 {
		return 0, syntaxErr(s.i, "expected number, got %q", s.b[s.i])
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, syntaxErr(s.i, "number out of range")
	}
	s.i += n
	return f, nil
}

func (s *scanner) nums(dst []float64) error {
	for k := range dst {
		f, err := s.num()
		if err != nil {
			return err
		}
		dst[k] = f
	}
	return nil
}

// flag reads a single-character arc flag. Flags may be packed without
// separators ("a1 1 0 00 10 10").
func (s *scanner) flag() (bool, error) {
	s.skipSeps()
	if s.done() {
		return false, syntaxErr(s.i, "expected arc flag, got end of path")
	}
	switch s.b[s.i] {
	case '0':
		s.i++
		return false, nil
	case '1':
		s.i++
		return true, nil
	}
	return false, syntaxErr(s.i, "arc flag must be 0 or 1, got %q", s.b[s.i])
}

// Parse parses a path description in the standard 2D path grammar (M, L, H,
// V, C, S, Q, T, A and Z, absolute and relative). The path must start with a
// move. Malformed input is rejected with an error wrapping ErrSyntax.
func Parse(d string) (*Path, error) {
	s := &scanner{b: []byte(d)}
	s.skipSpaces()
	if s.done() {
		return nil, syntaxErr(0, "empty path")
	}

	b := newBuilder(d)
	var cmd, prev byte
	var ctrl Point // last control point, for S and T reflection
	var args [7]float64

	for {
		s.skipSpaces()
		if s.done() {
			break
		}
		start := s.i
		c := s.b[s.i]
		switch {
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			cmd = c
			s.i++
		case cmd != 0 && s.hasNumber():
			// implicit repetition of the previous command
			switch cmd {
			case 'M':
				cmd = 'L'
			case 'm':
				cmd = 'l'
			case 'Z', 'z':
				return nil, syntaxErr(start, "unexpected number after close")
			}
		default:
			return nil, syntaxErr(start, "unexpected character %q", c)
		}
		if prev == 0 && cmd != 'M' && cmd != 'm' {
			return nil, syntaxErr(start, "path must start with a move, got %q", cmd)
		}

		cur := b.current()
		rel := cmd >= 'a'
		off := func(p Point) Point {
			if rel {
				return p.Add(cur)
			}
			return p
		}
		// A leading relative move is interpreted as absolute.
		if prev == 0 && cmd == 'm' {
			rel = false
		}

		switch cmd {
		case 'M', 'm':
			if err := s.nums(args[:2]); err != nil {
				return nil, err
			}
			b.moveTo(off(Point{args[0], args[1]}))
		case 'L', 'l':
			if err := s.nums(args[:2]); err != nil {
				return nil, err
			}
			b.lineTo(off(Point{args[0], args[1]}))
		case 'H', 'h':
			if err := s.nums(args[:1]); err != nil {
				return nil, err
			}
			x := args[0]
			if rel {
				x += cur.X
			}
			b.lineTo(Point{x, cur.Y})
		case 'V', 'v':
			if err := s.nums(args[:1]); err != nil {
				return nil, err
			}
			y := args[0]
			if rel {
				y += cur.Y
			}
			b.lineTo(Point{cur.X, y})
		case 'C', 'c':
			if err := s.nums(args[:6]); err != nil {
				return nil, err
			}
			c1 := off(Point{args[0], args[1]})
			c2 := off(Point{args[2], args[3]})
			b.cubicTo(c1, c2, off(Point{args[4], args[5]}))
			ctrl = c2
		case 'S', 's':
			if err := s.nums(args[:4]); err != nil {
				return nil, err
			}
			c1 := cur
			if prev == 'C' || prev == 'c' || prev == 'S' || prev == 's' {
				c1 = cur.Scale(2).Sub(ctrl)
			}
			c2 := off(Point{args[0], args[1]})
			b.cubicTo(c1, c2, off(Point{args[2], args[3]}))
			ctrl = c2
		case 'Q', 'q':
			if err := s.nums(args[:4]); err != nil {
				return nil, err
			}
			c1 := off(Point{args[0], args[1]})
			b.quadTo(c1, off(Point{args[2], args[3]}))
			ctrl = c1
		case 'T', 't':
			if err := s.nums(args[:2]); err != nil {
				return nil, err
			}
			c1 := cur
			if prev == 'Q' || prev == 'q' || prev == 'T' || prev == 't' {
				c1 = cur.Scale(2).Sub(ctrl)
			}
			b.quadTo(c1, off(Point{args[0], args[1]}))
			ctrl = c1
		case 'A', 'a':
			if err := s.nums(args[:3]); err != nil {
				return nil, err
			}
			large, err := s.flag()
			if err != nil {
				return nil, err
			}
			sweep, err := s.flag()
			if err != nil {
				return nil, err
			}
			if err := s.nums(args[3:5]); err != nil {
				return nil, err
			}
			b.arcTo(args[0], args[1], args[2]*math.Pi/180, large, sweep, off(Point{args[3], args[4]}))
		case 'Z', 'z':
			b.closePath()
		default:
			return nil, syntaxErr(start, "unknown command %q", cmd)
		}
		prev = cmd
	}
	return b.finish(), nil
}

// MustParse is like Parse but panics on error. It is intended for path
// literals in tests and examples.
func MustParse(d string) *Path {
	p, err := Parse(d)
	if err != nil {
		panic(err)
	}
	return p
}
