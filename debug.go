package constructer

import (
	"time"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when Stage.debug is true.
type debugStats struct {
	updateTime    time.Duration
	drawTime      time.Duration
	layerCount    int
	drawnCount    int
	triangleCount int
}

// debugLog writes timing and draw stats at debug level.
func (s *Stage) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	frames, timers := s.clk.Pending()
	logger.Debug("stage: frame",
		"update", stats.updateTime,
		"draw", stats.drawTime,
		"layers", stats.layerCount,
		"drawn", stats.drawnCount,
		"triangles", stats.triangleCount,
		"tweens", len(s.tweens),
		"pendingFrames", frames,
		"pendingTimers", timers,
	)
}

// debugMaxLayerCount is the per-scene layer count above which debug mode
// warns.
const debugMaxLayerCount = 1000

func debugCheckLayerCount(sc *Scene) {
	if len(sc.layers) > debugMaxLayerCount {
		logger.Warn("stage: scene has many layers",
			"scene", sc.id, "layers", len(sc.layers), "threshold", debugMaxLayerCount)
	}
}
