package keyframe

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/phanxgames/constructer/ease"
)

// ErrExists is returned when a library already holds a sequence by that name.
var ErrExists = errors.New("keyframe: sequence already exists")

// Sequence is a named keyframe set with a duration and an easing curve.
type Sequence struct {
	Name     string
	Duration time.Duration
	Easing   ease.Kind
	Set      *Set
}

// NewSequence returns a sequence with an empty set.
func NewSequence(name string, d time.Duration, easing ease.Kind) *Sequence {
	return &Sequence{Name: name, Duration: d, Easing: easing, Set: NewSet()}
}

// Step adds a keyframe to the sequence.
func (s *Sequence) Step(offset float64, props Props) error {
	if s.Set == nil {
		s.Set = NewSet()
	}
	if err := s.Set.Add(offset, props); err != nil {
		return fmt.Errorf("sequence %q: %w", s.Name, err)
	}
	return nil
}

// At eases progress and interpolates the set at the result.
func (s *Sequence) At(progress float64) Props {
	return Interpolate(s.Set, ease.Apply(progress, s.Easing))
}

// Library is a registry of named sequences. The caller owns it; there is no
// package-level registry.
type Library struct {
	seqs map[string]*Sequence
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{seqs: make(map[string]*Sequence)}
}

// Create registers a new empty sequence.
func (l *Library) Create(name string, d time.Duration, easing ease.Kind) (*Sequence, error) {
	if _, ok := l.seqs[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrExists, name)
	}
	s := NewSequence(name, d, easing)
	l.seqs[name] = s
	return s, nil
}

// Put registers an existing sequence under its name.
func (l *Library) Put(s *Sequence) error {
	if _, ok := l.seqs[s.Name]; ok {
		return fmt.Errorf("%w: %q", ErrExists, s.Name)
	}
	l.seqs[s.Name] = s
	return nil
}

// Get looks a sequence up by name.
func (l *Library) Get(name string) (*Sequence, bool) {
	s, ok := l.seqs[name]
	return s, ok
}

// Remove deletes a sequence and reports whether it was present.
func (l *Library) Remove(name string) bool {
	if _, ok := l.seqs[name]; !ok {
		return false
	}
	delete(l.seqs, name)
	return true
}

// Names returns the registered names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.seqs))
	for n := range l.seqs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered sequences.
func (l *Library) Len() int { return len(l.seqs) }
