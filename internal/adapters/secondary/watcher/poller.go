package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// PollingWatcher implements file watching using polling
type PollingWatcher struct {
	interval  time.Duration
	debounce  time.Duration
	fileInfos map[string]FileInfo
	events    chan ports.FileChangeEvent
	logger    *zap.Logger
	mu        sync.RWMutex
	wg        sync.WaitGroup
	stopOnce  sync.Once
	stopCh    chan struct{}
}

var _ ports.FileWatcher = (*PollingWatcher)(nil)

// FileInfo stores information about a file
type FileInfo struct {
	Size     int64
	ModTime  time.Time
	Checksum string
}

// NewPollingWatcher creates a new polling-based file watcher
func NewPollingWatcher(interval, debounce time.Duration, logger *zap.Logger) *PollingWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollingWatcher{
		interval:  interval,
		debounce:  debounce,
		fileInfos: make(map[string]FileInfo),
		events:    make(chan ports.FileChangeEvent, 10),
		logger:    logger.Named("watcher"),
		stopCh:    make(chan struct{}),
	}
}

// Watch starts watching a file for changes
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := w.scanFile(absPath); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	w.logger.Debug("polling file", zap.String("path", absPath), zap.Duration("interval", w.interval))
	return w.events, nil
}

// Stop stops the file watcher and closes the events channel
func (w *PollingWatcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		close(w.events)
	})
	return nil
}

// scanFile scans a file and stores its info
func (w *PollingWatcher) scanFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	checksum, err := w.calculateChecksum(path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	w.mu.Lock()
	w.fileInfos[path] = FileInfo{
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Checksum: checksum,
	}
	w.mu.Unlock()

	return nil
}

// pollLoop continuously polls for file changes
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	lastEventTime := time.Time{}

	// changes seen inside the debounce window are held back, not dropped
	var pending *ports.ChangeType

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			changeType, changed, err := w.checkForChanges(path)
			if err != nil {
				w.logger.Warn("watch error", zap.String("path", path), zap.Error(err))
				continue
			}
			if changed {
				pending = &changeType
			}

			if pending == nil || time.Since(lastEventTime) < w.debounce {
				continue
			}

			event := ports.FileChangeEvent{
				Path:      path,
				Type:      *pending,
				Timestamp: time.Now(),
			}

			select {
			case w.events <- event:
				lastEventTime = time.Now()
				pending = nil
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// checkForChanges reports whether the file changed since the last check
func (w *PollingWatcher) checkForChanges(path string) (ports.ChangeType, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.mu.Lock()
			_, existed := w.fileInfos[path]
			delete(w.fileInfos, path)
			w.mu.Unlock()
			return ports.Deleted, existed, nil
		}
		return ports.Modified, false, fmt.Errorf("stat file: %w", err)
	}

	w.mu.RLock()
	oldInfo, exists := w.fileInfos[path]
	w.mu.RUnlock()

	// skip the checksum when size and mtime are unchanged
	if exists && oldInfo.Size == info.Size() && oldInfo.ModTime.Equal(info.ModTime()) {
		return ports.Modified, false, nil
	}

	checksum, err := w.calculateChecksum(path)
	if err != nil {
		return ports.Modified, false, fmt.Errorf("calculate checksum: %w", err)
	}

	newInfo := FileInfo{
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Checksum: checksum,
	}

	w.mu.Lock()
	w.fileInfos[path] = newInfo
	w.mu.Unlock()

	if !exists {
		return ports.Created, true, nil
	}
	return ports.Modified, oldInfo.Checksum != checksum, nil
}

// calculateChecksum calculates SHA256 checksum of a file
func (w *PollingWatcher) calculateChecksum(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is validated by caller
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
