package constructer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay renders the current FPS and TPS into a small image that is
// refreshed every half second.
type fpsOverlay struct {
	img   *ebiten.Image
	since time.Duration
	stale bool
}

const fpsRefresh = 500 * time.Millisecond

func (f *fpsOverlay) update(dt time.Duration) {
	f.since += dt
	if f.since >= fpsRefresh {
		f.since = 0
		f.stale = true
	}
}

func (f *fpsOverlay) draw(screen *ebiten.Image) {
	if f.img == nil {
		// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
		f.img = ebiten.NewImage(100, 32)
		f.stale = true
	}
	if f.stale {
		f.stale = false
		f.img.Clear()
		// Semi-transparent background for readability
		f.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(f.img, nil)
}
