package constructer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phanxgames/constructer/ease"
	"github.com/phanxgames/constructer/morph"
)

const storyboardYAML = `
window:
  title: Demo
  width: 320
  height: 240
scroll:
  document_height: 1000
sequences:
  - name: fade-in
    duration: 200ms
    easing: linear
    keyframes:
      from: {opacity: 0}
      to: {opacity: 1}
scenes:
  - id: hero
    background: "#101820"
    layers:
      - id: blob
        z: 2
        fill: "#e85d75"
        morph:
          paths:
            - "M0 0 L10 0 L10 10 Z"
            - "M0 0 L20 0 L20 20 Z"
          duration: 100ms
          samples: 8
          no_pause: true
      - id: card
        z: 1
        path: "M0 0 L100 0 L100 50 L0 50 Z"
        bounds: {x: 0, y: 400, width: 100, height: 50}
        scroll_keyframes:
          "0%": {opacity: 0}
          "100%": {opacity: 1}
timelines:
  - name: intro
    autoplay: true
    entries:
      - layer: hero/card
        sequence: fade-in
      - layers: [blob]
        duration: 100ms
        easing: linear
        keyframes:
          "0%": {x: 0}
          "100%": {x: 50}
`

const storyboardTOML = `
[window]
width = 200
height = 100

[[scenes]]
id = "main"

[[scenes.layers]]
id = "dot"
path = "M0 0 L4 0 L4 4 Z"
fill = "rgb(255, 0, 0)"
x = 5.0

[[timelines]]
name = "move"

[[timelines.entries]]
layer = "dot"
duration = "100ms"
easing = "linear"

[timelines.entries.keyframes."0%"]
x = 5

[timelines.entries.keyframes."100%"]
x = 15
`

func TestLoadStoryboardYAML(t *testing.T) {
	sb, err := LoadStoryboard([]byte(storyboardYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if sb.Window.Title != "Demo" || sb.Window.Width != 320 {
		t.Errorf("window = %+v", sb.Window)
	}
	if len(sb.Scenes) != 1 || len(sb.Scenes[0].Layers) != 2 {
		t.Fatalf("scenes = %+v", sb.Scenes)
	}
	m := sb.Scenes[0].Layers[0].Morph
	if m == nil || len(m.Paths) != 2 || time.Duration(m.Duration) != 100*time.Millisecond {
		t.Errorf("morph = %+v", m)
	}
	if sb.Sequences[0].Easing != ease.Linear {
		t.Errorf("easing = %v, want linear", sb.Sequences[0].Easing)
	}
}

func TestHydrateYAML(t *testing.T) {
	sb, err := LoadStoryboard([]byte(storyboardYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	st := NewStage(10, 10)
	if err := sb.Hydrate(st); err != nil {
		t.Fatal(err)
	}

	if w, h := st.Size(); w != 320 || h != 240 {
		t.Errorf("size = %dx%d", w, h)
	}
	sc, ok := st.Scene("hero")
	if !ok {
		t.Fatal("scene hero missing")
	}
	if sc.Background.A != 1 {
		t.Errorf("background = %+v", sc.Background)
	}
	layers := sc.Layers()
	if layers[0].ID != "card" || layers[1].ID != "blob" {
		t.Errorf("layer order = %s, %s", layers[0].ID, layers[1].ID)
	}
	blob, card := layers[1], layers[0]
	if blob.PathData() != "M0 0 L10 0 L10 10 Z" {
		t.Errorf("blob starts at %q", blob.PathData())
	}
	if len(st.Loops()) != 1 || st.Loops()[0].State() != morph.Running {
		t.Error("morph loop not running")
	}
	if _, ok := st.Sequences().Get("fade-in"); !ok {
		t.Error("sequence fade-in not registered")
	}
	// Card is below the fold: scroll progress 0.
	if card.Alpha != 0 {
		t.Errorf("card alpha = %f, want 0", card.Alpha)
	}
	if st.Viewport().DocumentHeight != 1000 {
		t.Errorf("document height = %f", st.Viewport().DocumentHeight)
	}

	tl, ok := st.Timeline("intro")
	if !ok || !tl.Playing() {
		t.Fatal("intro not playing")
	}
	if tl.Duration() != 300*time.Millisecond {
		t.Errorf("intro duration = %v, want 300ms", tl.Duration())
	}
	for range 40 {
		st.Step(10 * time.Millisecond)
	}
	if tl.Playing() {
		t.Error("intro still playing")
	}
	if card.Alpha != 1 {
		t.Errorf("card alpha = %f, want 1", card.Alpha)
	}
	if blob.X != 50 {
		t.Errorf("blob x = %f, want 50", blob.X)
	}
}

func TestHydrateTOML(t *testing.T) {
	sb, err := LoadStoryboard([]byte(storyboardTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	st := NewStage(10, 10)
	if err := sb.Hydrate(st); err != nil {
		t.Fatal(err)
	}
	dot, err := st.FindLayer("main/dot")
	if err != nil {
		t.Fatal(err)
	}
	if dot.Fill != (Color{1, 0, 0, 1}) || dot.X != 5 {
		t.Errorf("dot = fill %+v x %f", dot.Fill, dot.X)
	}

	tl, _ := st.Timeline("move")
	if tl.Playing() {
		t.Fatal("move should wait for Play")
	}
	if err := st.Play("move", nil); err != nil {
		t.Fatal(err)
	}
	for range 20 {
		st.Step(10 * time.Millisecond)
	}
	if dot.X != 15 {
		t.Errorf("dot x = %f, want 15", dot.X)
	}
	if err := st.Play("missing", nil); err == nil {
		t.Error("Play(missing) expected error")
	}
}

func TestHydrateErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"duplicate scene", "scenes: [{id: a}, {id: a}]", ErrSceneExists},
		{"bad color", "scenes: [{id: a, layers: [{fill: 'nope'}]}]", ErrColor},
		{"unknown sequence", "scenes: [{id: a, layers: [{id: l}]}]\ntimelines: [{entries: [{layer: l, sequence: x}]}]", nil},
		{"unknown layer", "timelines: [{entries: [{layer: ghost, keyframes: {from: {x: 0}}}]}]", nil},
		{"empty entry", "scenes: [{id: a, layers: [{id: l}]}]\ntimelines: [{entries: [{layer: l}]}]", nil},
		{"bad morph", "scenes: [{id: a, layers: [{morph: {paths: ['M0 0', 'nope']}}]}]", nil},
	}
	for _, tt := range tests {
		sb, err := LoadStoryboard([]byte(tt.doc), FormatYAML)
		if err != nil {
			t.Errorf("%s: load: %v", tt.name, err)
			continue
		}
		err = sb.Hydrate(NewStage(10, 10))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if tt.is != nil && !errors.Is(err, tt.is) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.is)
		}
	}
}

const effectsYAML = `
scenes:
  - id: fx
    layers:
      - id: ring
        text:
          content: around we go
          size: 18
          circle: {cx: 100, cy: 100, radius: 60}
        filters:
          - {type: glow, radius: 6, color: "#ffcc00"}
      - id: wave
        fill: "#4fb3bf"
        text:
          content: wavy
          anchor: middle
          start_offset: 50%
          letter_spacing: 1.5
          wave: {x: 0, y: 200, width: 300, amplitude: 15, frequency: 2}
      - id: card
        path: "M0 0 L100 0 L100 50 L0 50 Z"
        filters:
          - {type: drop_shadow}
          - {type: blur, radius: 3}
          - {type: color_matrix, preset: sepia}
          - {type: color_matrix, matrix: [1,0,0,0,0, 0,1,0,0,0, 0,0,1,0,0, 0,0,0,0.5,0]}
          - {type: outline, thickness: 2, color: red}
timelines:
  - name: spin
    entries:
      - layer: fx/ring
        duration: 1s
        keyframes:
          from: {startOffset: 0%}
          to: {startOffset: 100%}
`

func TestHydrateTextAndFilters(t *testing.T) {
	sb, err := LoadStoryboard([]byte(effectsYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	st := NewStage(320, 240)
	if err := sb.Hydrate(st); err != nil {
		t.Fatal(err)
	}

	ring, err := st.FindLayer("fx/ring")
	if err != nil {
		t.Fatal(err)
	}
	if ring.Text == nil || ring.Text.Content != "around we go" {
		t.Fatalf("ring text = %+v", ring.Text)
	}
	if ring.Text.Anchor != AnchorMiddle || ring.Text.StartOffset.String() != "25%" {
		t.Errorf("ring anchor %v offset %v", ring.Text.Anchor, ring.Text.StartOffset)
	}
	if f, ok := ring.Text.Font.(*TTFFont); !ok || f.Size() != 18 {
		t.Errorf("ring font = %#v", ring.Text.Font)
	}
	if ring.Fill != ColorWhite || ring.PathData() == "" {
		t.Errorf("ring fill %+v path %q", ring.Fill, ring.PathData())
	}
	if g, ok := ring.Filters[0].(*GlowFilter); !ok || g.Radius != 6 || g.Color != (Color{1, 0.8, 0, 1}) {
		t.Errorf("ring filter = %#v", ring.Filters[0])
	}

	wave, _ := st.FindLayer("wave")
	if wave.Fill != (MustParseColor("#4fb3bf")) {
		t.Errorf("wave fill = %+v", wave.Fill)
	}
	if wave.Text.Anchor != AnchorMiddle || wave.Text.StartOffset.String() != "50%" || wave.Text.LetterSpacing != 1.5 {
		t.Errorf("wave text = %+v", wave.Text)
	}

	card, _ := st.FindLayer("card")
	if len(card.Filters) != 5 {
		t.Fatalf("card filters = %d, want 5", len(card.Filters))
	}
	shadow := card.Filters[0].(*DropShadowFilter)
	if shadow.DX != 2 || shadow.DY != 2 || shadow.Blur != 4 || shadow.Color != (Color{0, 0, 0, 0.5}) {
		t.Errorf("shadow defaults = %+v", shadow)
	}
	if b := card.Filters[1].(*BlurFilter); b.Radius != 3 {
		t.Errorf("blur radius = %d", b.Radius)
	}
	if m := card.Filters[2].(*ColorMatrixFilter); m.Matrix != SepiaMatrix {
		t.Errorf("sepia matrix = %v", m.Matrix)
	}
	if m := card.Filters[3].(*ColorMatrixFilter); m.Matrix[18] != 0.5 {
		t.Errorf("inline matrix = %v", m.Matrix)
	}
	if o := card.Filters[4].(*OutlineFilter); o.Thickness != 2 || o.Color != (Color{1, 0, 0, 1}) {
		t.Errorf("outline = %+v", o)
	}

	if err := st.Play("spin", nil); err != nil {
		t.Fatal(err)
	}
	for range 50 {
		st.Step(10 * time.Millisecond)
	}
	f, _ := ring.Text.StartOffset.Float()
	if ring.Text.StartOffset.Unit() != "%" || f < 40 || f > 60 {
		t.Errorf("startOffset halfway = %v", ring.Text.StartOffset)
	}
}

func TestHydrateEffectErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"unknown filter", "scenes: [{id: a, layers: [{path: 'M0 0 L1 1', filters: [{type: sparkle}]}]}]", ErrFilter},
		{"unknown preset", "scenes: [{id: a, layers: [{path: 'M0 0 L1 1', filters: [{type: color_matrix, preset: neon}]}]}]", ErrFilter},
		{"short matrix", "scenes: [{id: a, layers: [{path: 'M0 0 L1 1', filters: [{type: color_matrix, matrix: [1, 0]}]}]}]", nil},
		{"bad filter color", "scenes: [{id: a, layers: [{path: 'M0 0 L1 1', filters: [{type: glow, color: nope}]}]}]", ErrColor},
		{"bad start offset", "scenes: [{id: a, layers: [{path: 'M0 0 L1 1', text: {content: x, start_offset: top}}]}]", nil},
		{"missing font", "scenes: [{id: a, layers: [{path: 'M0 0 L1 1', text: {content: x, font: /no/such/font.ttf}}]}]", nil},
	}
	for _, tt := range tests {
		sb, err := LoadStoryboard([]byte(tt.doc), FormatYAML)
		if err != nil {
			t.Errorf("%s: load: %v", tt.name, err)
			continue
		}
		err = sb.Hydrate(NewStage(10, 10))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if tt.is != nil && !errors.Is(err, tt.is) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.is)
		}
	}
}

func TestLoadStoryboardErrors(t *testing.T) {
	if _, err := LoadStoryboard([]byte("x: 1"), "json"); !errors.Is(err, ErrFormat) {
		t.Errorf("unknown format err = %v", err)
	}
	if _, err := LoadStoryboard([]byte("scenes: [oops"), FormatYAML); err == nil {
		t.Error("bad YAML expected error")
	}
	if _, err := LoadStoryboard([]byte("[window\n"), FormatTOML); err == nil {
		t.Error("bad TOML expected error")
	}
	if _, err := LoadStoryboardFile("storyboard.json"); !errors.Is(err, ErrFormat) {
		t.Errorf("json path err = %v", err)
	}
	if _, err := LoadStoryboardFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file expected error")
	}
}

func TestLoadStoryboardFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yml")
	if err := os.WriteFile(path, []byte(storyboardYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	sb, err := LoadStoryboardFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if sb.Window.Title != "Demo" {
		t.Errorf("title = %q", sb.Window.Title)
	}
	cfg := RunConfigFrom(sb)
	if cfg.Title != "Demo" || cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("RunConfigFrom = %+v", cfg)
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"800ms", 800 * time.Millisecond},
		{"1.5s", 1500 * time.Millisecond},
		{"250", 250 * time.Millisecond},
		{"", 0},
	}
	for _, tt := range tests {
		var d Duration
		if err := d.UnmarshalText([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalText(%q): %v", tt.in, err)
			continue
		}
		if time.Duration(d) != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, time.Duration(d), tt.want)
		}
	}
	var d Duration
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected error for \"soon\"")
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.yaml": FormatYAML, "b.YML": FormatYAML, "c.toml": FormatTOML} {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v", path, got, err)
		}
	}
}
