package constructer

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds window and loop settings for Run.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	TPS       int
	ShowFPS   bool
	Debug     bool
	Resizable bool

	// Watch, when set, is a storyboard path that is hydrated onto the stage
	// now and again every time the file changes.
	Watch string
}

// RunConfigFrom fills a RunConfig from a storyboard's window settings.
func RunConfigFrom(sb *Storyboard) RunConfig {
	w := sb.Window
	return RunConfig{
		Title:   w.Title,
		Width:   w.Width,
		Height:  w.Height,
		TPS:     w.TPS,
		ShowFPS: w.FPS,
		Debug:   w.Debug,
	}
}

// Run opens a window and drives the stage until the window closes.
func Run(stage *Stage, cfg RunConfig) error {
	if cfg.Width > 0 && cfg.Height > 0 {
		stage.SetSize(cfg.Width, cfg.Height)
	}
	w, h := stage.Size()
	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	stage.ShowFPS(cfg.ShowFPS)
	stage.SetDebugMode(cfg.Debug)

	var game ebiten.Game = stage
	if cfg.Watch != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rg := &reloadGame{Stage: stage, pending: make(chan *Storyboard, 1), cfg: cfg}
		go func() {
			err := WatchStoryboard(ctx, cfg.Watch, func(sb *Storyboard, err error) {
				if err == nil {
					rg.offer(sb)
				}
			})
			if err != nil {
				logger.Error("storyboard: watcher stopped", "err", err)
			}
		}()
		game = rg
	}

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// reloadGame swaps in storyboards delivered by the watcher goroutine at the
// start of an Update, so hydration never races the game loop.
type reloadGame struct {
	*Stage
	pending chan *Storyboard
	cfg     RunConfig
}

// offer replaces any storyboard still waiting to be applied.
func (g *reloadGame) offer(sb *Storyboard) {
	for {
		select {
		case g.pending <- sb:
			return
		default:
		}
		select {
		case <-g.pending:
		default:
		}
	}
}

func (g *reloadGame) Update() error {
	select {
	case sb := <-g.pending:
		g.reload(sb)
	default:
	}
	return g.Stage.Update()
}

func (g *reloadGame) reload(sb *Storyboard) {
	g.Stage.Reset()
	if err := sb.Hydrate(g.Stage); err != nil {
		logger.Error("storyboard: hydrate failed", "err", err)
		return
	}
	// Flags given on the command line win over the document.
	if g.cfg.ShowFPS {
		g.Stage.ShowFPS(true)
	}
	if g.cfg.Debug {
		g.Stage.SetDebugMode(true)
	}
	logger.Info("storyboard: loaded", "path", g.cfg.Watch, "scenes", len(g.Stage.Scenes()))
}
