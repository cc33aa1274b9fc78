// Package watch regenerates masks when panorama files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports settled writes to files in a directory. Editors and
// downloaders often write a file in several steps, so a path only fires once
// no new event has arrived for the debounce interval.
type Watcher struct {
	dir      string
	debounce time.Duration
	filter   func(path string) bool
	onChange func(ctx context.Context, path string)
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a watcher for dir. filter selects the paths of interest; a nil
// filter accepts every file.
func New(dir string, debounce time.Duration, filter func(string) bool, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		filter:   filter,
		log:      log,
		pending:  make(map[string]time.Time),
	}
}

// OnChange sets the callback invoked for each settled path. It runs on the
// watcher goroutine, one call at a time.
func (w *Watcher) OnChange(callback func(ctx context.Context, path string)) {
	w.onChange = callback
}

// Run watches until ctx is canceled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("Watching for panorama changes", zap.String("dir", w.dir),
		zap.Duration("debounce", w.debounce))

	tick := w.debounce / 4
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.record(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if w.onChange != nil {
					w.onChange(ctx, path)
				}
			}
		}
	}
}

// record notes a write or create of a relevant file.
func (w *Watcher) record(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(event.Name)
	if !w.filter(path) {
		return
	}
	w.log.Debug("Panorama changed", zap.String("path", path), zap.Stringer("op", event.Op))

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// settled removes and returns paths quiet for at least the debounce interval.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

// Pending returns the number of paths waiting to settle.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
