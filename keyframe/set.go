package keyframe

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrOffset is returned for keyframe offsets outside 0..100.
var ErrOffset = errors.New("keyframe: offset out of range")

// Frame is one keyframe: a percentage offset and the properties it sets.
type Frame struct {
	Offset float64
	Props  Props
}

// Set is an ordered collection of keyframes. Offsets are percentages in
// 0..100 and need not include either end.
type Set struct {
	frames []Frame
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{}
}

// FromTo returns a two-frame set running from one property map to another.
func FromTo(from, to Props) *Set {
	s := NewSet()
	_ = s.Add(0, from)
	_ = s.Add(100, to)
	return s
}

// Add places props at offset. Adding to an offset that already has a frame
// merges the maps, with the new values winning.
func (s *Set) Add(offset float64, props Props) error {
	if math.IsNaN(offset) || offset < 0 || offset > 100 {
		return fmt.Errorf("%w: %v", ErrOffset, offset)
	}
	i := sort.Search(len(s.frames), func(i int) bool { return s.frames[i].Offset >= offset })
	if i < len(s.frames) && s.frames[i].Offset == offset {
		for k, v := range props {
			s.frames[i].Props[k] = v
		}
		return nil
	}
	s.frames = append(s.frames, Frame{})
	copy(s.frames[i+1:], s.frames[i:])
	s.frames[i] = Frame{Offset: offset, Props: props.Clone()}
	return nil
}

// Len returns the number of frames.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// Frames returns a copy of the frames in ascending offset order.
func (s *Set) Frames() []Frame {
	if s == nil {
		return nil
	}
	out := make([]Frame, len(s.frames))
	for i, f := range s.frames {
		out[i] = Frame{Offset: f.Offset, Props: f.Props.Clone()}
	}
	return out
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	return &Set{frames: s.Frames()}
}

// ParseOffset reads a keyframe selector: a percentage with or without the
// percent sign, "from" (0) or "to" (100).
func ParseOffset(key string) (float64, error) {
	k := strings.TrimSpace(strings.ToLower(key))
	switch k {
	case "from":
		return 0, nil
	case "to":
		return 100, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(k, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOffset, key)
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		return 0, fmt.Errorf("%w: %q", ErrOffset, key)
	}
	return f, nil
}

// FromMap builds a set from decoded configuration. Keys are selectors as
// accepted by ParseOffset; a comma-separated key such as "0%, 100%" applies
// the same properties at each offset. Values may be strings, numbers or
// booleans.
func FromMap(m map[string]map[string]any) (*Set, error) {
	s := NewSet()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		props, err := propsFromMap(m[key])
		if err != nil {
			return nil, fmt.Errorf("keyframe %q: %w", key, err)
		}
		for _, sel := range strings.Split(key, ",") {
			off, err := ParseOffset(sel)
			if err != nil {
				return nil, err
			}
			if err := s.Add(off, props); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func propsFromMap(m map[string]any) (Props, error) {
	p := make(Props, len(m))
	for name, raw := range m {
		switch v := raw.(type) {
		case string:
			p[name] = ParseValue(v)
		case int:
			p[name] = Number(float64(v), "")
		case int64:
			p[name] = Number(float64(v), "")
		case uint64:
			p[name] = Number(float64(v), "")
		case float64:
			p[name] = Number(v, "")
		case bool:
			p[name] = Token(strconv.FormatBool(v))
		case nil:
			p[name] = Value{}
		default:
			return nil, fmt.Errorf("property %q: unsupported value %T", name, raw)
		}
	}
	return p, nil
}

// DecodeYAML reads a set written as a YAML mapping of selectors to
// property maps:
//
//	from: {opacity: 0}
//	50%:  {opacity: 0.8, x: 10px}
//	to:   {opacity: 1}
func DecodeYAML(data []byte) (*Set, error) {
	var m map[string]map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode keyframes: %w", err)
	}
	return FromMap(m)
}

// DecodeTOML reads a set written as TOML tables keyed by selector.
//
//	[from]
//	opacity = 0
//	["50%"]
//	opacity = 0.8
func DecodeTOML(data []byte) (*Set, error) {
	var m map[string]map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode keyframes: %w", err)
	}
	return FromMap(m)
}

// UnmarshalYAML lets a Set appear directly inside larger YAML documents.
func (s *Set) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]map[string]any
	if err := node.Decode(&m); err != nil {
		return err
	}
	decoded, err := FromMap(m)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}
