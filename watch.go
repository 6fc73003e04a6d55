package constructer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchStoryboard loads the storyboard at path and calls fn with it, then
// calls fn again every time the file is written, created or renamed into
// place. Decode errors are passed to fn with a nil storyboard and watching
// continues. It blocks until ctx is done.
//
// fn runs on the watcher goroutine; callers driving a Stage must hand the
// storyboard over to the game loop (Run does this).
func WatchStoryboard(ctx context.Context, path string, fn func(*Storyboard, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch storyboard: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch storyboard: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace files instead of writing
	// them in place.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch storyboard: %w", err)
	}

	fn(LoadStoryboardFile(abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename:
				logger.Debug("storyboard: changed", "path", abs, "op", event.Op.String())
				sb, err := LoadStoryboardFile(abs)
				if err != nil {
					logger.Error("storyboard: reload failed", "path", abs, "err", err)
				}
				fn(sb, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("storyboard: watch", "path", abs, "err", err)
		}
	}
}
