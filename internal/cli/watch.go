package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a burst of file events must stay quiet before
// the callback runs. Editors often emit several events per save.
var watchDebounce = 50 * time.Millisecond

// watchFile calls fn after each change to path until ctx is done. It always
// returns a non-nil error; ctx.Err() on cancellation.
//
// The parent directory is watched so that atomic saves, which replace the
// file, keep being noticed.
func watchFile(ctx context.Context, path string, logger *log.Logger, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	target := filepath.Clean(path)

	burst := time.NewTimer(time.Hour)
	burst.Stop()
	pending := false

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			if filepath.Clean(ev.Name) != target || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("file event", "event", ev.Op.String(), "path", ev.Name)
			pending = true
			burst.Reset(watchDebounce)
		case <-burst.C:
			if pending {
				pending = false
				logger.Info("detected change, recomputing", "path", path)
				fn()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			logger.Warn("watch error", "err", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
