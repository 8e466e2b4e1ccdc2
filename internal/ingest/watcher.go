package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls a function when the visit source file changes on disk.
// Bursts of events (editors and exporters often write in several steps) are
// collapsed into a single call once the file has been quiet for the debounce
// interval.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context)
	logger   *slog.Logger
	done     chan struct{}
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, debounce time.Duration, onChange func(ctx context.Context), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the file
// so that replace-by-rename keeps being noticed. Watching stops when ctx ends.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	go w.loop(ctx, fw)
	w.logger.Info("watching visit source", "path", w.path, "debounce", w.debounce)
	return nil
}

// Done is closed once the watcher has stopped
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer close(w.done)
	defer fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("visit source event", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "path", w.path, "error", err)

		case <-fire:
			fire = nil
			w.onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
