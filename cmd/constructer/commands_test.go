package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/phanxgames/constructer"
)

func testCLI() (*cli, *bytes.Buffer) {
	var buf bytes.Buffer
	return &cli{out: termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))}, &buf
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSample(t *testing.T) {
	c, buf := testCLI()
	if err := runSample(c, []string{"-n", "5", "M0 0 L40 0"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"length: 40.00", "5 samples", "(20, 0)", "M0.00 0.00 L10.00 0.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSampleErrors(t *testing.T) {
	c, _ := testCLI()
	if err := runSample(c, nil); err == nil {
		t.Error("expected error with no path")
	}
	if err := runSample(c, []string{"Q"}); err == nil {
		t.Error("expected parse error")
	}
	if err := runSample(c, []string{"-n", "1", "M0 0 L1 1"}); err == nil {
		t.Error("expected sample count error")
	}
}

func TestMorph(t *testing.T) {
	c, buf := testCLI()
	err := runMorph(c, []string{"-n", "4", "-frames", "4", "-duration", "100ms", "-ease", "linear", "M0 0 L10 0", "M0 10 L10 10"})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "state: completed") {
		t.Errorf("morph did not complete:\n%s", out)
	}
	if !strings.Contains(out, "1.000  M0.00 10.00") {
		t.Errorf("last frame should match the target:\n%s", out)
	}
	if strings.Contains(out, "warning") {
		t.Errorf("unexpected mismatch warning:\n%s", out)
	}
}

func TestMorphUsesPackageLogger(t *testing.T) {
	var logs bytes.Buffer
	prev := constructer.Logger()
	constructer.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer constructer.SetLogger(prev)

	c, _ := testCLI()
	if err := runMorph(c, []string{"-n", "4", "-frames", "2", "M0 0 L10 0", "M0 0 L0 10"}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"morph start", "morph complete"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}
}

func TestMorphErrors(t *testing.T) {
	c, _ := testCLI()
	if err := runMorph(c, []string{"M0 0 L1 1"}); err == nil {
		t.Error("expected error with one path")
	}
	if err := runMorph(c, []string{"-frames", "0", "M0 0 L1 1", "M0 0 L2 2"}); err == nil {
		t.Error("expected error for zero frames")
	}
}

func TestKeyframes(t *testing.T) {
	c, buf := testCLI()
	path := writeFile(t, "fade.yaml", "from: {opacity: 0, x: 0px}\nto: {opacity: 1, x: 10px}\n")
	if err := runKeyframes(c, []string{"-at", "0, 0.5,1", path}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"0.500  opacity=0.5 x=5px", "1.000  opacity=1 x=10px"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestKeyframesTOML(t *testing.T) {
	c, buf := testCLI()
	path := writeFile(t, "move.toml", "[from]\nx = 0\n[to]\nx = 20\n")
	if err := runKeyframes(c, []string{"-at", "0.25", path}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "0.250  x=5") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestParseProgress(t *testing.T) {
	got, err := parseProgress("0, .5,,1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[1] != 0.5 {
		t.Errorf("parseProgress = %v", got)
	}
	if _, err := parseProgress("half"); err == nil {
		t.Error("expected error for a word")
	}
	if _, err := parseProgress(" , "); err == nil {
		t.Error("expected error for no values")
	}
}

func TestCheck(t *testing.T) {
	c, buf := testCLI()
	path := writeFile(t, "board.yaml", `
window: {title: Demo, width: 320, height: 200}
scenes:
  - id: main
    layers:
      - id: box
        path: "M0 0 L10 0 L10 10 Z"
timelines:
  - entries:
      - layer: box
        duration: 250ms
        keyframes: {from: {x: 0}, to: {x: 10}}
`)
	if err := runCheck(c, []string{path}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"Demo" 320x200`, "scene main", "box", "timeline timeline-0", "duration: 250ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckTextAndFilters(t *testing.T) {
	c, buf := testCLI()
	path := writeFile(t, "board.yaml", `
scenes:
  - id: main
    layers:
      - id: ring
        text: {content: hello, circle: {cx: 50, cy: 50, radius: 30}}
        filters: [{type: glow}, {type: blur, radius: 2}]
`)
	if err := runCheck(c, []string{path}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"ring", `text "hello"`, "2 filters"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckInvalid(t *testing.T) {
	c, _ := testCLI()
	path := writeFile(t, "board.yaml", "scenes: [{id: a}, {id: a}]\n")
	if err := runCheck(c, []string{path}); err == nil {
		t.Error("expected duplicate scene error")
	}
}

func TestAbbrev(t *testing.T) {
	if got := abbrev("short", 10); got != "short" {
		t.Errorf("abbrev = %q", got)
	}
	if got := abbrev("M0 0 L10 10 L20 20", 10); got != "M0 0 L..." {
		t.Errorf("abbrev = %q", got)
	}
}
