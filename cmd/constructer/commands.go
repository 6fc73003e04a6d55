package main

import (
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/phanxgames/constructer"
	"github.com/phanxgames/constructer/clock"
	"github.com/phanxgames/constructer/ease"
	"github.com/phanxgames/constructer/keyframe"
	"github.com/phanxgames/constructer/morph"
	"github.com/phanxgames/constructer/svgpath"
)

var errArgs = errors.New("wrong number of arguments")

func newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: constructer %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

func runSample(c *cli, args []string) error {
	fs := newFlagSet("sample", "<path>")
	n := fs.Int("n", svgpath.DefaultSamples, "number of samples")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errArgs
	}
	p, err := svgpath.Parse(fs.Arg(0))
	if err != nil {
		return err
	}
	pts, err := p.Sample(*n)
	if err != nil {
		return err
	}

	b := p.Bounds()
	c.heading("path")
	c.field("length", strconv.FormatFloat(p.Length(), 'f', 2, 64))
	c.field("subpaths", p.Subpaths())
	c.field("closed", p.Closed())
	c.field("bounds", fmt.Sprintf("%.2f x %.2f at (%.2f, %.2f)", b.Width(), b.Height(), b.MinX, b.MinY))
	c.heading("%d samples", len(pts))
	for i, pt := range pts {
		c.line("  %3d  %s", i, pt)
	}
	c.heading("polyline")
	c.line("  %s", svgpath.Serialize(pts))
	return nil
}

func runMorph(c *cli, args []string) error {
	fs := newFlagSet("morph", "<from> <to>")
	n := fs.Int("n", svgpath.DefaultSamples, "samples per path")
	frames := fs.Int("frames", 10, "frames to print")
	dur := fs.Duration("duration", morph.DefaultDuration, "morph duration")
	easing := fs.String("ease", ease.InOut.String(), "easing keyword")
	pad := fs.Bool("pad", false, "pad the shorter sample sequence instead of truncating")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errArgs
	}
	if *frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", *frames)
	}

	clk := clock.NewManual()
	var out []string
	var progress []float64
	s, err := morph.Run(clk, morph.TargetFunc(func(d string) { out = append(out, d) }), fs.Arg(0), fs.Arg(1), morph.Options{
		Duration:    *dur,
		Easing:      ease.ParseKind(*easing),
		Samples:     *n,
		PadMismatch: *pad,
		OnUpdate:    func(t float64) { progress = append(progress, t) },
		Logger:      constructer.Logger(),
	})
	if err != nil {
		return err
	}
	step := *dur / time.Duration(*frames)
	if step <= 0 {
		step = time.Millisecond
	}
	clk.RunUntil(step, *frames*4+4, func() bool { return s.State() != morph.Running })

	from, to := s.SampleCounts()
	c.heading("morph")
	c.field("duration", s.Duration())
	c.field("easing", ease.ParseKind(*easing))
	c.field("samples", fmt.Sprintf("%d -> %d", from, to))
	if s.Mismatched() {
		c.field("warning", "sample counts differ, extra points dropped")
	}
	c.field("state", s.State())
	c.heading("%d frames", len(progress))
	for i, t := range progress {
		c.line("  %5.3f  %s", t, out[i])
	}
	if len(out) > len(progress) {
		c.field("final", out[len(out)-1])
	}
	return nil
}

func runKeyframes(c *cli, args []string) error {
	fs := newFlagSet("keyframes", "<file.yaml|file.toml>")
	at := fs.String("at", "0,0.25,0.5,0.75,1", "comma separated progress values")
	easing := fs.String("ease", ease.Linear.String(), "easing applied to each progress value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errArgs
	}
	points, err := parseProgress(*at)
	if err != nil {
		return err
	}
	set, err := loadKeyframes(fs.Arg(0))
	if err != nil {
		return err
	}

	kind := ease.ParseKind(*easing)
	c.heading("%s (%d frames, %s)", fs.Arg(0), set.Len(), kind)
	for _, t := range points {
		props := keyframe.Interpolate(set, ease.Apply(t, kind)).Strings()
		parts := make([]string, 0, len(props))
		for _, k := range slices.Sorted(maps.Keys(props)) {
			parts = append(parts, k+"="+props[k])
		}
		c.line("  %5.3f  %s", t, strings.Join(parts, " "))
	}
	return nil
}

func loadKeyframes(path string) (*keyframe.Set, error) {
	format, err := constructer.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if format == constructer.FormatTOML {
		return keyframe.DecodeTOML(data)
	}
	return keyframe.DecodeYAML(data)
}

func parseProgress(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("progress %q: %w", f, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.New("no progress values")
	}
	return out, nil
}

func runCheck(c *cli, args []string) error {
	fs := newFlagSet("check", "<storyboard>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errArgs
	}
	sb, st, err := loadStage(fs.Arg(0))
	if err != nil {
		return err
	}

	w, h := st.Size()
	c.heading("%s", fs.Arg(0))
	c.field("window", fmt.Sprintf("%q %dx%d", sb.Window.Title, w, h))
	c.field("sequences", len(sb.Sequences))
	c.field("morph loops", len(st.Loops()))
	c.field("scroll effects", st.Viewport().Handles())
	for _, sc := range st.Scenes() {
		c.heading("scene %s", sc.ID())
		for _, l := range sc.Layers() {
			c.line("  z=%-3d %-16s %s", l.Z, l.ID, abbrev(l.PathData(), 48))
			if l.Text != nil {
				c.line("        text %q", abbrev(l.Text.Content, 40))
			}
			if n := len(l.Filters); n > 0 {
				c.line("        %d filters", n)
			}
		}
	}
	for i, tc := range sb.Timelines {
		name := tc.Name
		if name == "" {
			name = fmt.Sprintf("timeline-%d", i)
		}
		tl, _ := st.Timeline(name)
		c.heading("timeline %s", name)
		c.field("duration", tl.Duration())
		c.field("autoplay", tc.Autoplay)
	}
	return nil
}

func runPreview(c *cli, args []string) error {
	fs := newFlagSet("preview", "<storyboard>")
	fps := fs.Bool("fps", false, "show the FPS overlay")
	debug := fs.Bool("debug", false, "log per-frame timing")
	noWatch := fs.Bool("no-watch", false, "do not reload when the file changes")
	resizable := fs.Bool("resizable", true, "allow resizing the window")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errArgs
	}
	path := fs.Arg(0)
	sb, st, err := loadStage(path)
	if err != nil {
		return err
	}

	cfg := constructer.RunConfigFrom(sb)
	if cfg.Title == "" {
		cfg.Title = "constructer - " + path
	}
	cfg.ShowFPS = cfg.ShowFPS || *fps
	cfg.Debug = cfg.Debug || *debug
	cfg.Resizable = *resizable
	if !*noWatch {
		cfg.Watch = path
	}
	c.line("previewing %s", c.out.String(path).Bold())
	return constructer.Run(st, cfg)
}

func loadStage(path string) (*constructer.Storyboard, *constructer.Stage, error) {
	sb, err := constructer.LoadStoryboardFile(path)
	if err != nil {
		return nil, nil, err
	}
	st := constructer.NewStage(800, 600)
	if err := sb.Hydrate(st); err != nil {
		return nil, nil, err
	}
	return sb, st, nil
}

func abbrev(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
