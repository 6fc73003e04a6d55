package constructer

import (
	"fmt"
	"sort"
)

// Scene is an ordered set of layers. Scenes are created by a Stage and
// drawn in creation order; layers inside a scene draw in ascending Z.
type Scene struct {
	id    string
	stage *Stage

	// Visible scenes are drawn. Hidden scenes still advance animations.
	Visible bool
	// Background fills the screen before the scene's layers draw. The zero
	// value leaves the screen untouched.
	Background Color

	layers []*Layer
	added  int // layers ever added, drives ids and stable ordering
}

// ID returns the scene's identifier.
func (s *Scene) ID() string { return s.id }

// Stage returns the owning stage, or nil once the scene is removed.
func (s *Scene) Stage() *Stage { return s.stage }

// AddLayer attaches l with the given z index and returns it. A layer without
// an ID is named "<scene>-layer-<n>" where n counts the scene's layers. A
// layer already in another scene is moved.
func (s *Scene) AddLayer(l *Layer, z int) *Layer {
	if l.scene != nil {
		l.scene.RemoveLayer(l.ID)
	}
	if l.ID == "" {
		l.ID = fmt.Sprintf("%s-layer-%d", s.id, len(s.layers))
	}
	l.Z = z
	l.scene = s
	l.seq = s.added
	s.added++
	s.layers = append(s.layers, l)
	s.sortLayers()
	if s.stage != nil && s.stage.debug {
		debugCheckLayerCount(s)
	}
	return l
}

// NewLayer creates a path layer and adds it at z. Invalid path data leaves
// the layer without a shape and is returned as an error.
func (s *Scene) NewLayer(d string, z int) (*Layer, error) {
	l, err := NewPathLayer("", d)
	s.AddLayer(l, z)
	return l, err
}

// SetZ moves l to a new z index within its scene.
func (s *Scene) SetZ(l *Layer, z int) {
	if l.scene != s {
		return
	}
	l.Z = z
	s.sortLayers()
}

func (s *Scene) sortLayers() {
	sort.SliceStable(s.layers, func(i, j int) bool {
		a, b := s.layers[i], s.layers[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.seq < b.seq
	})
}

// Layers returns the layers in draw order. The slice is a copy.
func (s *Scene) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Len returns the number of layers.
func (s *Scene) Len() int { return len(s.layers) }

// Layer looks a layer up by ID.
func (s *Scene) Layer(id string) (*Layer, bool) {
	for _, l := range s.layers {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// RemoveLayer detaches the layer with the given ID. It reports whether a
// layer was removed.
func (s *Scene) RemoveLayer(id string) bool {
	for i, l := range s.layers {
		if l.ID == id {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			l.scene = nil
			return true
		}
	}
	return false
}

// Clear removes every layer.
func (s *Scene) Clear() {
	for _, l := range s.layers {
		l.scene = nil
	}
	s.layers = s.layers[:0]
}
