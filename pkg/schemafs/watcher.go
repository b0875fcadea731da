package schemafs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is how long the watcher waits after the last
// file event before triggering a reload. Editors and sync tools write
// artifacts in bursts; one reload per burst is enough.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher watches a schema directory and triggers a reload callback
// after changes to definition artifacts settle.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher over the given schema directory. A zero
// debounce interval uses DefaultDebounceInterval. A nil logger discards
// watcher output.
func NewWatcher(dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger.With("component", "schemafs"),
		watcher:  fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, watching the directory until the context is cancelled or
// Stop is called. Each settled burst of artifact changes invokes
// onReload once; a reload error is logged and watching continues, so a
// bad artifact does not kill the watcher while an operator fixes it.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch schema directory %q: %w", w.dir, err)
	}

	w.logger.Info("schema watcher started",
		"dir", w.dir,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("schema watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("schema watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !shouldReloadFor(event) {
				continue
			}

			w.logger.Debug("schema file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-pending:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-pending:
			timer = nil
			pending = nil

			if err := onReload(); err != nil {
				w.logger.Error("schema reload failed", "error", err)
				continue
			}
			w.logger.Info("schema definitions reloaded", "dir", w.dir)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("schema watcher error", "error", err)
			// Keep watching despite errors
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldReloadFor filters events down to content changes of definition
// artifacts. Chmod-only events and unrelated files never trigger a
// reload.
func shouldReloadFor(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return isSchemaFile(filepath.Base(event.Name))
}
