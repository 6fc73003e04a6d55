package constructer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/constructer/ease"
	"github.com/phanxgames/constructer/keyframe"
	"github.com/phanxgames/constructer/morph"
	"github.com/phanxgames/constructer/svgpath"
)

// ErrFormat is returned for storyboard formats other than YAML and TOML.
var ErrFormat = errors.New("constructer: unknown storyboard format")

// Format names a storyboard encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrFormat, path)
}

// Duration is a time.Duration that decodes from "800ms"-style strings or
// from a bare number of milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(ms * float64(time.Millisecond))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Keyframes is the document form of a keyframe set: offset selectors
// ("from", "50%", "0%, 100%") mapped to property values.
type Keyframes map[string]map[string]any

// Storyboard describes a stage: window settings, scenes with their layers,
// reusable sequences and timelines.
type Storyboard struct {
	Window    WindowConfig     `yaml:"window" toml:"window"`
	Scroll    ScrollConfig     `yaml:"scroll" toml:"scroll"`
	Sequences []SequenceConfig `yaml:"sequences" toml:"sequences"`
	Scenes    []SceneConfig    `yaml:"scenes" toml:"scenes"`
	Timelines []TimelineConfig `yaml:"timelines" toml:"timelines"`
}

// WindowConfig holds the ebiten window settings used by Run.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	TPS    int    `yaml:"tps" toml:"tps"`
	Debug  bool   `yaml:"debug" toml:"debug"`
	FPS    bool   `yaml:"fps" toml:"fps"`
}

// ScrollConfig sets up the viewport.
type ScrollConfig struct {
	DocumentHeight float64 `yaml:"document_height" toml:"document_height"`
	Start          float64 `yaml:"start" toml:"start"`
}

// SequenceConfig declares a named sequence in the stage library.
type SequenceConfig struct {
	Name      string    `yaml:"name" toml:"name"`
	Duration  Duration  `yaml:"duration" toml:"duration"`
	Easing    ease.Kind `yaml:"easing" toml:"easing"`
	Keyframes Keyframes `yaml:"keyframes" toml:"keyframes"`
}

// SceneConfig declares one scene.
type SceneConfig struct {
	ID         string        `yaml:"id" toml:"id"`
	Background string        `yaml:"background" toml:"background"`
	Hidden     bool          `yaml:"hidden" toml:"hidden"`
	Layers     []LayerConfig `yaml:"layers" toml:"layers"`
}

// LayerConfig declares one layer and the effects attached to it.
type LayerConfig struct {
	ID          string         `yaml:"id" toml:"id"`
	Name        string         `yaml:"name" toml:"name"`
	Z           int            `yaml:"z" toml:"z"`
	Path        string         `yaml:"path" toml:"path"`
	Fill        string         `yaml:"fill" toml:"fill"`
	Stroke      string         `yaml:"stroke" toml:"stroke"`
	StrokeWidth float64        `yaml:"stroke_width" toml:"stroke_width"`
	X           float64        `yaml:"x" toml:"x"`
	Y           float64        `yaml:"y" toml:"y"`
	Scale       float64        `yaml:"scale" toml:"scale"`
	Rotate      float64        `yaml:"rotate" toml:"rotate"`
	Opacity     *float64       `yaml:"opacity" toml:"opacity"`
	Fixed       bool           `yaml:"fixed" toml:"fixed"`
	Bounds      *RectConfig    `yaml:"bounds" toml:"bounds"`
	Morph       *MorphConfig   `yaml:"morph" toml:"morph"`
	ScrollKeys  Keyframes      `yaml:"scroll_keyframes" toml:"scroll_keyframes"`
	Parallax    float64        `yaml:"parallax" toml:"parallax"`
	Text        *TextConfig    `yaml:"text" toml:"text"`
	Filters     []FilterConfig `yaml:"filters" toml:"filters"`
}

// TextConfig turns a layer into text along its path. When the layer has no
// path, Circle or Wave generates one.
type TextConfig struct {
	Content string `yaml:"content" toml:"content"`
	// Font is a TTF or OTF file. Empty means Go Regular.
	Font          string        `yaml:"font" toml:"font"`
	Size          float64       `yaml:"size" toml:"size"`
	Anchor        string        `yaml:"anchor" toml:"anchor"`
	StartOffset   string        `yaml:"start_offset" toml:"start_offset"`
	LetterSpacing float64       `yaml:"letter_spacing" toml:"letter_spacing"`
	Circle        *CircleConfig `yaml:"circle" toml:"circle"`
	Wave          *WaveConfig   `yaml:"wave" toml:"wave"`
}

// CircleConfig places text around a circle, centered at the top unless the
// text sets its own anchor and offset.
type CircleConfig struct {
	CX     float64 `yaml:"cx" toml:"cx"`
	CY     float64 `yaml:"cy" toml:"cy"`
	Radius float64 `yaml:"radius" toml:"radius"`
}

// WaveConfig places text on a sine wave.
type WaveConfig struct {
	X         float64 `yaml:"x" toml:"x"`
	Y         float64 `yaml:"y" toml:"y"`
	Width     float64 `yaml:"width" toml:"width"`
	Amplitude float64 `yaml:"amplitude" toml:"amplitude"`
	Frequency float64 `yaml:"frequency" toml:"frequency"`
}

// FilterConfig declares one layer filter. Type is blur, drop_shadow, glow,
// color_matrix or outline; the other fields apply by type.
type FilterConfig struct {
	Type      string    `yaml:"type" toml:"type"`
	Radius    *int      `yaml:"radius" toml:"radius"`
	DX        *float64  `yaml:"dx" toml:"dx"`
	DY        *float64  `yaml:"dy" toml:"dy"`
	Blur      *int      `yaml:"blur" toml:"blur"`
	Color     string    `yaml:"color" toml:"color"`
	Thickness int       `yaml:"thickness" toml:"thickness"`
	Preset    string    `yaml:"preset" toml:"preset"`
	Amount    *float64  `yaml:"amount" toml:"amount"`
	Matrix    []float64 `yaml:"matrix" toml:"matrix"`
}

// RectConfig is a document-space rectangle.
type RectConfig struct {
	X      float64 `yaml:"x" toml:"x"`
	Y      float64 `yaml:"y" toml:"y"`
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// MorphConfig attaches a morph loop to a layer.
type MorphConfig struct {
	Paths    []string  `yaml:"paths" toml:"paths"`
	Duration Duration  `yaml:"duration" toml:"duration"`
	Easing   ease.Kind `yaml:"easing" toml:"easing"`
	Samples  int       `yaml:"samples" toml:"samples"`
	Pad      bool      `yaml:"pad" toml:"pad"`
	Once     bool      `yaml:"once" toml:"once"`
	Pause    Duration  `yaml:"pause" toml:"pause"`
	NoPause  bool      `yaml:"no_pause" toml:"no_pause"`
}

// TimelineConfig declares a timeline.
type TimelineConfig struct {
	Name     string        `yaml:"name" toml:"name"`
	Autoplay bool          `yaml:"autoplay" toml:"autoplay"`
	Entries  []EntryConfig `yaml:"entries" toml:"entries"`
}

// EntryConfig is one timeline entry. Layer is "<scene>/<layer>" or a bare
// layer ID searched across scenes. Either Sequence names a library sequence
// or Keyframes and Duration describe the animation inline.
type EntryConfig struct {
	Layer      string        `yaml:"layer" toml:"layer"`
	Sequence   string        `yaml:"sequence" toml:"sequence"`
	Keyframes  Keyframes     `yaml:"keyframes" toml:"keyframes"`
	Duration   Duration      `yaml:"duration" toml:"duration"`
	Offset     *Duration     `yaml:"offset" toml:"offset"`
	Easing     *ease.Kind    `yaml:"easing" toml:"easing"`
	Iterations int           `yaml:"iterations" toml:"iterations"`
	Fill       keyframe.Fill `yaml:"fill" toml:"fill"`
	Stagger    Duration      `yaml:"stagger" toml:"stagger"`
	Layers     []string      `yaml:"layers" toml:"layers"`
}

// LoadStoryboard decodes a storyboard document.
func LoadStoryboard(data []byte, format Format) (*Storyboard, error) {
	var sb Storyboard
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &sb)
	case FormatTOML:
		err = toml.Unmarshal(data, &sb)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse storyboard: %w", err)
	}
	return &sb, nil
}

// LoadStoryboardFile reads and decodes a storyboard, choosing the format by
// extension.
func LoadStoryboardFile(path string) (*Storyboard, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storyboard: %w", err)
	}
	sb, err := LoadStoryboard(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sb, nil
}

// Hydrate builds the storyboard onto st: it resizes the stage, fills the
// sequence library, creates scenes and layers, starts morph loops, attaches
// scroll effects and registers timelines, playing those marked autoplay.
// Hydrate does not clear st first; call Reset for a fresh stage.
func (sb *Storyboard) Hydrate(st *Stage) error {
	if sb.Window.Width > 0 && sb.Window.Height > 0 {
		st.SetSize(sb.Window.Width, sb.Window.Height)
	}
	st.SetDebugMode(sb.Window.Debug)
	st.ShowFPS(sb.Window.FPS)
	vp := st.Viewport()
	vp.DocumentHeight = sb.Scroll.DocumentHeight
	vp.SetScroll(sb.Scroll.Start)

	for _, sc := range sb.Sequences {
		if err := hydrateSequence(st.Sequences(), sc); err != nil {
			return err
		}
	}
	for _, sc := range sb.Scenes {
		if err := hydrateScene(st, sc); err != nil {
			return err
		}
	}
	for i, tc := range sb.Timelines {
		if tc.Name == "" {
			tc.Name = fmt.Sprintf("timeline-%d", i)
		}
		tl, err := buildTimeline(st, tc)
		if err != nil {
			return fmt.Errorf("storyboard timeline %q: %w", tc.Name, err)
		}
		st.AddTimeline(tc.Name, tl)
		if tc.Autoplay {
			if err := tl.Play(st.Clock(), nil); err != nil {
				return fmt.Errorf("storyboard timeline %q: %w", tc.Name, err)
			}
		}
	}
	logger.Debug("storyboard: hydrated",
		"scenes", len(sb.Scenes), "timelines", len(sb.Timelines), "sequences", len(sb.Sequences))
	return nil
}

func hydrateSequence(lib *keyframe.Library, sc SequenceConfig) error {
	set, err := keyframe.FromMap(sc.Keyframes)
	if err != nil {
		return fmt.Errorf("storyboard sequence %q: %w", sc.Name, err)
	}
	seq := &keyframe.Sequence{Name: sc.Name, Duration: time.Duration(sc.Duration), Easing: sc.Easing, Set: set}
	if err := lib.Put(seq); err != nil {
		return fmt.Errorf("storyboard sequence: %w", err)
	}
	return nil
}

func hydrateScene(st *Stage, cfg SceneConfig) error {
	sc, err := st.CreateScene(cfg.ID)
	if err != nil {
		return fmt.Errorf("storyboard scene: %w", err)
	}
	sc.Visible = !cfg.Hidden
	if cfg.Background != "" {
		if sc.Background, err = ParseColor(cfg.Background); err != nil {
			return fmt.Errorf("storyboard scene %q: background: %w", sc.ID(), err)
		}
	}
	for i, lc := range cfg.Layers {
		if err := hydrateLayer(st, sc, lc); err != nil {
			return fmt.Errorf("storyboard scene %q layer %d: %w", sc.ID(), i, err)
		}
	}
	return nil
}

func hydrateLayer(st *Stage, sc *Scene, cfg LayerConfig) error {
	d := cfg.Path
	if d == "" && cfg.Morph != nil && len(cfg.Morph.Paths) > 0 {
		d = cfg.Morph.Paths[0]
	}
	if d == "" && cfg.Text != nil {
		d = cfg.Text.path()
	}
	l, err := NewPathLayer(cfg.Name, d)
	if err != nil {
		return err
	}
	if cfg.Text != nil {
		if l.Text, err = buildTextPath(*cfg.Text); err != nil {
			return fmt.Errorf("text: %w", err)
		}
		l.Fill = ColorWhite
	}
	for i, fc := range cfg.Filters {
		f, err := buildFilter(fc)
		if err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
		l.Filters = append(l.Filters, f)
	}
	l.ID = cfg.ID
	l.X, l.Y = cfg.X, cfg.Y
	if cfg.Scale != 0 {
		l.ScaleX, l.ScaleY = cfg.Scale, cfg.Scale
	}
	l.Rotation = cfg.Rotate
	if cfg.Opacity != nil {
		l.Alpha = clamp01(*cfg.Opacity)
	}
	l.Fixed = cfg.Fixed
	if cfg.Fill != "" {
		if l.Fill, err = ParseColor(cfg.Fill); err != nil {
			return fmt.Errorf("fill: %w", err)
		}
	}
	if cfg.Stroke != "" {
		if l.Stroke, err = ParseColor(cfg.Stroke); err != nil {
			return fmt.Errorf("stroke: %w", err)
		}
	}
	if cfg.StrokeWidth > 0 {
		l.StrokeWidth = cfg.StrokeWidth
	}
	if b := cfg.Bounds; b != nil {
		l.Bounds = Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
	}
	sc.AddLayer(l, cfg.Z)

	if m := cfg.Morph; m != nil {
		opts := morph.LoopOptions{
			Options: morph.Options{
				Duration:    time.Duration(m.Duration),
				Easing:      m.Easing,
				Samples:     m.Samples,
				PadMismatch: m.Pad,
				Logger:      logger,
			},
			Once:         m.Once,
			PauseBetween: time.Duration(m.Pause),
		}
		if m.NoPause {
			opts.PauseBetween = -1
		}
		loop, err := morph.NewLoop(m.Paths, opts)
		if err != nil {
			return fmt.Errorf("morph: %w", err)
		}
		if err := st.AddLoop(loop, l); err != nil {
			return fmt.Errorf("morph: %w", err)
		}
	}
	if len(cfg.ScrollKeys) > 0 {
		set, err := keyframe.FromMap(cfg.ScrollKeys)
		if err != nil {
			return fmt.Errorf("scroll keyframes: %w", err)
		}
		st.Viewport().ScrollAnimate(l, set)
	}
	if cfg.Parallax != 0 {
		st.Viewport().Parallax(l, cfg.Parallax)
	}
	return nil
}

// defaultTextSize is the font size when a text config gives none.
const defaultTextSize = 14

func (tc TextConfig) path() string {
	switch {
	case tc.Circle != nil:
		return svgpath.NewBuilder().Circle(tc.Circle.CX, tc.Circle.CY, tc.Circle.Radius).String()
	case tc.Wave != nil:
		w := tc.Wave
		return svgpath.NewBuilder().Wave(w.X, w.Y, w.Width, w.Amplitude, w.Frequency, wavySegments).String()
	}
	return ""
}

func buildTextPath(tc TextConfig) (*TextPath, error) {
	size := tc.Size
	if size <= 0 {
		size = defaultTextSize
	}
	var font *TTFFont
	var err error
	if tc.Font == "" {
		font, err = DefaultFont(size)
	} else {
		var data []byte
		if data, err = os.ReadFile(tc.Font); err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		font, err = LoadTTFFont(data, size)
	}
	if err != nil {
		return nil, err
	}

	tp := NewTextPath(tc.Content, font)
	tp.LetterSpacing = tc.LetterSpacing
	if tc.Circle != nil {
		tp.Anchor = AnchorMiddle
		tp.StartOffset = keyframe.Number(25, "%")
	}
	if tc.Anchor != "" {
		tp.Anchor = ParseTextAnchor(tc.Anchor)
	}
	if tc.StartOffset != "" {
		v := keyframe.ParseValue(tc.StartOffset)
		if !v.IsNumeric() {
			return nil, fmt.Errorf("start_offset %q is not a number", tc.StartOffset)
		}
		tp.StartOffset = v
	}
	return tp, nil
}

// ErrFilter is returned for an unknown filter type or preset.
var ErrFilter = errors.New("constructer: unknown filter")

func buildFilter(fc FilterConfig) (Filter, error) {
	color := func(def string) (Color, error) {
		if fc.Color == "" {
			return ParseColor(def)
		}
		return ParseColor(fc.Color)
	}
	intOr := func(p *int, def int) int {
		if p == nil {
			return def
		}
		return *p
	}
	floatOr := func(p *float64, def float64) float64 {
		if p == nil {
			return def
		}
		return *p
	}

	switch strings.ToLower(strings.ReplaceAll(fc.Type, "-", "_")) {
	case "blur":
		return NewBlurFilter(intOr(fc.Radius, 4)), nil
	case "drop_shadow", "dropshadow", "shadow":
		c, err := color("rgba(0, 0, 0, 0.5)")
		if err != nil {
			return nil, err
		}
		return NewDropShadowFilter(floatOr(fc.DX, 2), floatOr(fc.DY, 2), intOr(fc.Blur, 4), c), nil
	case "glow":
		c, err := color("#fff")
		if err != nil {
			return nil, err
		}
		return NewGlowFilter(intOr(fc.Radius, 4), c), nil
	case "outline":
		c, err := color("#000")
		if err != nil {
			return nil, err
		}
		return NewOutlineFilter(max(fc.Thickness, 1), c), nil
	case "color_matrix", "colormatrix":
		if len(fc.Matrix) > 0 {
			if len(fc.Matrix) != 20 {
				return nil, fmt.Errorf("color matrix needs 20 values, got %d", len(fc.Matrix))
			}
			var m ColorMatrix
			copy(m[:], fc.Matrix)
			return NewColorMatrixFilter(m), nil
		}
		m, err := presetMatrix(fc.Preset, fc.Amount)
		if err != nil {
			return nil, err
		}
		return NewColorMatrixFilter(m), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFilter, fc.Type)
}

// presetMatrix resolves a named matrix. Brightness, contrast and saturation
// take amount, defaulting to no change.
func presetMatrix(name string, amount *float64) (ColorMatrix, error) {
	switch strings.ToLower(name) {
	case "grayscale", "greyscale":
		return GrayscaleMatrix, nil
	case "sepia":
		return SepiaMatrix, nil
	case "invert":
		return InvertMatrix, nil
	case "identity":
		return IdentityMatrix, nil
	case "brightness":
		if amount == nil {
			return IdentityMatrix, nil
		}
		return BrightnessMatrix(*amount), nil
	case "contrast":
		if amount == nil {
			return IdentityMatrix, nil
		}
		return ContrastMatrix(*amount), nil
	case "saturation":
		if amount == nil {
			return IdentityMatrix, nil
		}
		return SaturationMatrix(*amount), nil
	}
	return ColorMatrix{}, fmt.Errorf("%w preset: %q", ErrFilter, name)
}

func buildTimeline(st *Stage, cfg TimelineConfig) (*keyframe.Timeline, error) {
	tl := keyframe.NewTimeline().SetLogger(logger)
	for i, ec := range cfg.Entries {
		if err := addEntry(st, tl, ec); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return tl, nil
}

func addEntry(st *Stage, tl *keyframe.Timeline, ec EntryConfig) error {
	var seq *keyframe.Sequence
	switch {
	case ec.Sequence != "":
		s, ok := st.Sequences().Get(ec.Sequence)
		if !ok {
			return fmt.Errorf("unknown sequence %q", ec.Sequence)
		}
		seq = s
	case len(ec.Keyframes) > 0:
		set, err := keyframe.FromMap(ec.Keyframes)
		if err != nil {
			return err
		}
		seq = &keyframe.Sequence{Duration: time.Duration(ec.Duration), Set: set}
		if ec.Easing != nil {
			seq.Easing = *ec.Easing
		}
	default:
		return errors.New("entry needs a sequence or keyframes")
	}
	if ec.Duration > 0 && ec.Sequence != "" {
		cp := *seq
		cp.Duration = time.Duration(ec.Duration)
		seq = &cp
	}

	var opts []keyframe.EntryOption
	if ec.Easing != nil {
		opts = append(opts, keyframe.WithEasing(*ec.Easing))
	}
	if ec.Iterations > 0 {
		opts = append(opts, keyframe.Iterations(ec.Iterations))
	}
	opts = append(opts, keyframe.WithFill(ec.Fill))

	refs := ec.Layers
	if ec.Layer != "" {
		refs = append([]string{ec.Layer}, refs...)
	}
	if len(refs) == 0 {
		return errors.New("entry has no layer")
	}
	base := tl.Duration()
	if ec.Offset != nil {
		base = time.Duration(*ec.Offset)
	}
	for i, ref := range refs {
		l, err := st.FindLayer(ref)
		if err != nil {
			return err
		}
		o := append(opts[:len(opts):len(opts)], keyframe.At(base+time.Duration(i)*time.Duration(ec.Stagger)))
		tl.AddSequence(l, seq, o...)
	}
	return nil
}

// FindLayer resolves "<scene>/<layer>" or a bare layer ID searched across
// scenes in creation order.
func (s *Stage) FindLayer(ref string) (*Layer, error) {
	if sceneID, layerID, ok := strings.Cut(ref, "/"); ok {
		sc, found := s.Scene(sceneID)
		if !found {
			return nil, fmt.Errorf("unknown scene %q", sceneID)
		}
		l, found := sc.Layer(layerID)
		if !found {
			return nil, fmt.Errorf("unknown layer %q in scene %q", layerID, sceneID)
		}
		return l, nil
	}
	for _, sc := range s.scenes {
		if l, ok := sc.Layer(ref); ok {
			return l, nil
		}
	}
	return nil, fmt.Errorf("unknown layer %q", ref)
}
