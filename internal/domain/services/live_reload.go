package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// LiveReloadService re-reads a served song when its file changes and tells
// connected editors about it
type LiveReloadService struct {
	watcher  ports.FileWatcher
	server   ports.HTTPServer
	sessions ports.SessionService
	logger   *zap.Logger

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	done        chan struct{}
	sessionID   string
	path        string
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(
	watcher ports.FileWatcher,
	server ports.HTTPServer,
	sessions ports.SessionService,
	logger *zap.Logger,
) *LiveReloadService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LiveReloadService{
		watcher:  watcher,
		server:   server,
		sessions: sessions,
		logger:   logger.Named("live_reload"),
	}
}

// Start watches filePath and reloads sessionID whenever it changes
func (s *LiveReloadService) Start(ctx context.Context, sessionID, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watching {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.watcher.Watch(watchCtx, filePath)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.watching = true
	s.watchCancel = cancel
	s.sessionID = sessionID
	s.path = filePath
	s.done = make(chan struct{})

	go s.handleEvents(watchCtx, events, s.done)

	s.logger.Info("watching song", zap.String("path", filePath), zap.String("session", sessionID))
	return nil
}

// Stop stops watching and waits for the event loop to exit
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.watchCancel, s.done
	s.watching = false
	s.watchCancel = nil
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			s.handleChange(ctx, event)
		}
	}
}

func (s *LiveReloadService) handleChange(ctx context.Context, event ports.FileChangeEvent) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	s.logger.Info("song changed on disk",
		zap.String("path", event.Path),
		zap.Stringer("type", event.Type),
	)

	data := map[string]interface{}{
		"file": event.Path,
		"type": event.Type.String(),
	}

	if event.Type == ports.Deleted {
		// keep the in-memory session; it can still be saved back
		s.notify(ports.UpdateEvent{
			Type:      ports.EventTypeFileChange,
			SessionID: sessionID,
			Timestamp: event.Timestamp,
			Data:      data,
		})
		return
	}

	session, err := s.sessions.Reload(ctx, sessionID)
	if err != nil {
		s.logger.Error("reload failed",
			zap.Error(err),
			zap.String("path", event.Path),
			zap.String("session", sessionID),
		)
		data["error"] = "reload failed"
		s.notify(ports.UpdateEvent{
			Type:      ports.EventTypeError,
			SessionID: sessionID,
			Timestamp: event.Timestamp,
			Data:      data,
		})
		return
	}

	data["slides"] = session.Document.SlideCount()
	data["titled"] = session.Titled
	s.notify(ports.UpdateEvent{
		Type:      ports.EventTypeFileChange,
		SessionID: sessionID,
		Timestamp: event.Timestamp,
		Data:      data,
	})
}

func (s *LiveReloadService) notify(event ports.UpdateEvent) {
	if err := s.server.NotifyClients(event); err != nil {
		s.logger.Warn("notify clients failed",
			zap.Error(err),
			zap.String("event_type", event.Type),
		)
	}
}
