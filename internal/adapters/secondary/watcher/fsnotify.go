package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// NotifyWatcher implements file watching with fsnotify. It watches the
// file's directory so that editors replacing the file by rename are seen.
type NotifyWatcher struct {
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	events    chan ports.FileChangeEvent
	logger    *zap.Logger
	mu        sync.RWMutex
	paths     map[string]bool
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
}

var _ ports.FileWatcher = (*NotifyWatcher)(nil)

// NewNotifyWatcher creates a new fsnotify based watcher
func NewNotifyWatcher(debounce time.Duration, logger *zap.Logger) (*NotifyWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &NotifyWatcher{
		debounce: debounce,
		watcher:  w,
		events:   make(chan ports.FileChangeEvent, 10),
		logger:   logger.Named("watcher"),
		paths:    make(map[string]bool),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching a file for changes
func (w *NotifyWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return nil, fmt.Errorf("watching %s: %w", absPath, err)
	}

	w.mu.Lock()
	w.paths[absPath] = true
	w.mu.Unlock()

	w.startOnce.Do(func() {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.run(ctx)
		}()
	})

	w.logger.Debug("watching file", zap.String("path", absPath))
	return w.events, nil
}

// Stop stops the watcher and closes the events channel
func (w *NotifyWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *NotifyWatcher) run(ctx context.Context) {
	pending := make(map[string]ports.FileChangeEvent)
	lastEvent := make(map[string]time.Time)

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if !w.watching(path) {
				continue
			}
			changeType, ok := changeTypeOf(event.Op)
			if !ok {
				continue
			}
			pending[path] = ports.FileChangeEvent{Path: path, Type: changeType, Timestamp: time.Now()}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			for path, event := range pending {
				if time.Since(event.Timestamp) < w.tick() || time.Since(lastEvent[path]) < w.debounce {
					continue
				}

				select {
				case w.events <- event:
					lastEvent[path] = time.Now()
					delete(pending, path)
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
			}
		}
	}
}

func (w *NotifyWatcher) watching(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.paths[path]
}

// tick is the settle time before a burst of writes is reported
func (w *NotifyWatcher) tick() time.Duration {
	if w.debounce > 0 && w.debounce < 100*time.Millisecond {
		return w.debounce
	}
	return 100 * time.Millisecond
}

func changeTypeOf(op fsnotify.Op) (ports.ChangeType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return ports.Created, true
	case op.Has(fsnotify.Write):
		return ports.Modified, true
	case op.Has(fsnotify.Remove):
		return ports.Deleted, true
	case op.Has(fsnotify.Rename):
		return ports.Renamed, true
	default:
		return ports.Modified, false
	}
}

// New returns the watcher backend selected by cfg
func New(cfg entities.WatcherConfig, logger *zap.Logger) (ports.FileWatcher, error) {
	switch cfg.GetBackend() {
	case entities.WatcherBackendFSNotify:
		return NewNotifyWatcher(cfg.GetDebounce(), logger)
	case entities.WatcherBackendPoll:
		return NewPollingWatcher(cfg.GetInterval(), cfg.GetDebounce(), logger), nil
	default:
		return nil, fmt.Errorf("unknown watcher backend: %s", cfg.Backend)
	}
}
