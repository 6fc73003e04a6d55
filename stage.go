package constructer

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/constructer/clock"
	"github.com/phanxgames/constructer/keyframe"
	"github.com/phanxgames/constructer/morph"
)

// ErrSceneExists is returned by CreateScene when the ID is taken.
var ErrSceneExists = errors.New("constructer: scene already exists")

// Stage owns the scenes, the frame clock, the viewport and the running style
// tweens. It implements ebiten.Game; each Update advances the clock by one
// tick so morph sessions, loops and timelines started on Clock() progress
// with the game loop.
//
// There is no global registry. Programs that need several independent
// stages create several.
type Stage struct {
	width, height int

	scenes  []*Scene
	created int

	clk      *clock.Manual
	viewport *Viewport
	tweens   []*StyleTween

	loops     []*morph.Loop
	timelines map[string]*keyframe.Timeline
	library   *keyframe.Library

	// OnUpdate runs at the end of every Update with the tick length.
	OnUpdate func(dt time.Duration)

	debug    bool
	showFPS  bool
	fps      fpsOverlay
	lastStep time.Duration

	// ScreenshotDir is the directory where screenshots are saved.
	// Defaults to "screenshots".
	ScreenshotDir   string
	screenshotQueue []string
}

// NewStage creates a stage with the given logical size.
func NewStage(width, height int) *Stage {
	s := &Stage{
		width:         width,
		height:        height,
		clk:           clock.NewManual(),
		timelines:     make(map[string]*keyframe.Timeline),
		library:       keyframe.NewLibrary(),
		ScreenshotDir: "screenshots",
	}
	s.viewport = newViewport(s, float64(width), float64(height))
	return s
}

// Size returns the logical screen size.
func (s *Stage) Size() (width, height int) { return s.width, s.height }

// SetSize changes the logical screen size and the viewport dimensions.
func (s *Stage) SetSize(width, height int) {
	s.width, s.height = width, height
	s.viewport.Width, s.viewport.Height = float64(width), float64(height)
	s.viewport.dirty = true
}

// Clock returns the stage's frame clock.
func (s *Stage) Clock() *clock.Manual { return s.clk }

// Viewport returns the stage's scroll viewport.
func (s *Stage) Viewport() *Viewport { return s.viewport }

// CreateScene registers a new scene. An empty id becomes "scene-<n>" where
// n counts the scenes created so far.
func (s *Stage) CreateScene(id string) (*Scene, error) {
	if id == "" {
		id = fmt.Sprintf("scene-%d", s.created)
		for s.find(id) >= 0 {
			s.created++
			id = fmt.Sprintf("scene-%d", s.created)
		}
	}
	if s.find(id) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrSceneExists, id)
	}
	s.created++
	sc := &Scene{id: id, stage: s, Visible: true}
	s.scenes = append(s.scenes, sc)
	logger.Debug("stage: scene created", "scene", id)
	return sc, nil
}

// Scene looks a scene up by ID.
func (s *Stage) Scene(id string) (*Scene, bool) {
	if i := s.find(id); i >= 0 {
		return s.scenes[i], true
	}
	return nil, false
}

// Scenes returns the scenes in creation order. The slice is a copy.
func (s *Stage) Scenes() []*Scene {
	out := make([]*Scene, len(s.scenes))
	copy(out, s.scenes)
	return out
}

// RemoveScene drops the scene with the given ID and reports whether it
// existed.
func (s *Stage) RemoveScene(id string) bool {
	i := s.find(id)
	if i < 0 {
		return false
	}
	s.scenes[i].stage = nil
	s.scenes = append(s.scenes[:i], s.scenes[i+1:]...)
	return true
}

// ClearScenes drops every scene.
func (s *Stage) ClearScenes() {
	for _, sc := range s.scenes {
		sc.stage = nil
	}
	s.scenes = s.scenes[:0]
}

func (s *Stage) find(id string) int {
	for i, sc := range s.scenes {
		if sc.id == id {
			return i
		}
	}
	return -1
}

// AddLoop starts l on the stage clock, morphing target, and keeps it so
// Reset can stop it.
func (s *Stage) AddLoop(l *morph.Loop, target morph.Target) error {
	if err := l.Start(s.clk, target); err != nil {
		return err
	}
	s.loops = append(s.loops, l)
	return nil
}

// Loops returns the morph loops started with AddLoop.
func (s *Stage) Loops() []*morph.Loop {
	out := make([]*morph.Loop, len(s.loops))
	copy(out, s.loops)
	return out
}

// AddTimeline registers tl under name, replacing and resetting any timeline
// already registered there.
func (s *Stage) AddTimeline(name string, tl *keyframe.Timeline) {
	if old, ok := s.timelines[name]; ok && old != tl {
		old.Reset()
	}
	s.timelines[name] = tl
}

// Timeline looks up a registered timeline.
func (s *Stage) Timeline(name string) (*keyframe.Timeline, bool) {
	tl, ok := s.timelines[name]
	return tl, ok
}

// Play starts the named timeline on the stage clock.
func (s *Stage) Play(name string, onComplete func()) error {
	tl, ok := s.timelines[name]
	if !ok {
		return fmt.Errorf("constructer: no timeline %q", name)
	}
	return tl.Play(s.clk, onComplete)
}

// Sequences returns the stage's keyframe sequence library.
func (s *Stage) Sequences() *keyframe.Library { return s.library }

// Reset halts every loop, stops every timeline, tween and scroll effect,
// drops all scenes and replaces the clock. Loops end as Stopped with their
// Done channels closed. Callers holding the previous Clock must fetch it
// again.
func (s *Stage) Reset() {
	for _, l := range s.loops {
		l.Halt()
	}
	s.loops = nil
	for _, tl := range s.timelines {
		tl.Reset()
	}
	s.timelines = make(map[string]*keyframe.Timeline)
	s.library = keyframe.NewLibrary()
	s.tweens = nil
	for len(s.viewport.handles) > 0 {
		s.viewport.handles[0].Destroy()
	}
	s.viewport.scroll = nil
	s.viewport.ScrollY = 0
	s.viewport.DocumentHeight = 0
	s.ClearScenes()
	s.created = 0
	s.clk = clock.NewManual()
}

// Animate registers a style tween to be advanced by Update. Finished tweens
// are dropped automatically.
func (s *Stage) Animate(t *StyleTween) *StyleTween {
	s.tweens = append(s.tweens, t)
	return t
}

// Tweens returns the number of running style tweens.
func (s *Stage) Tweens() int { return len(s.tweens) }

// SetDebugMode enables per-frame timing logs and layer count warnings.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// ShowFPS toggles the FPS/TPS overlay in the top-left corner.
func (s *Stage) ShowFPS(enabled bool) {
	s.showFPS = enabled
}

// Update implements ebiten.Game.
func (s *Stage) Update() error {
	s.Step(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

// Step advances everything on the stage by dt: the clock first, then style
// tweens, then the viewport and its scroll handles.
func (s *Stage) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.clk.Advance(dt)

	secs := float32(dt.Seconds())
	// Tweens added by OnComplete callbacks land in a fresh slice and start
	// on the next step.
	active := s.tweens
	s.tweens = nil
	live := active[:0]
	for _, tw := range active {
		tw.Update(secs)
		if !tw.Done {
			live = append(live, tw)
		}
	}
	clear(active[len(live):])
	s.tweens = append(live, s.tweens...)

	s.viewport.update(secs)
	s.fps.update(dt)

	if s.OnUpdate != nil {
		s.OnUpdate(dt)
	}
	if s.debug {
		s.lastStep = time.Since(t0)
	}
}

// Draw implements ebiten.Game.
func (s *Stage) Draw(screen *ebiten.Image) {
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	scroll := s.viewport.view()
	for _, sc := range s.scenes {
		if !sc.Visible {
			continue
		}
		if sc.Background.A > 0 {
			screen.Fill(sc.Background.toRGBA())
		}
		for _, l := range sc.layers {
			stats.layerCount++
			view := scroll
			if l.Fixed {
				view = identityTransform
			}
			if n := drawLayer(screen, l, view); n > 0 {
				stats.drawnCount++
				stats.triangleCount += n
			}
		}
	}

	if s.showFPS {
		s.fps.draw(screen)
	}

	if s.debug {
		stats.updateTime = s.lastStep
		stats.drawTime = time.Since(t0)
		s.debugLog(stats)
	}

	s.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The stage keeps its logical size.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	return s.width, s.height
}
