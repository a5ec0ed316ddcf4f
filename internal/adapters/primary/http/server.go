package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// maxBodyBytes bounds JSON request bodies, which carry whole songs
const maxBodyBytes = 5 << 20

// Server is the local editing server: a JSON API over sessions plus a
// websocket feed of session changes
type Server struct {
	sessions      ports.SessionService
	exporter      ports.ExportService
	preview       ports.PreviewRenderer
	config        entities.ServerConfig
	newSlideTitle string
	defaultFormat string
	logger        *zap.Logger

	connMgr *ConnectionManager
	limiter *rateLimiter
	metrics *monitoring.ServerMetrics

	mu             sync.RWMutex
	server         *http.Server
	listener       net.Listener
	running        bool
	stopManager    context.CancelFunc
	defaultSession string
}

// NewServer creates a new HTTP server
func NewServer(
	sessions ports.SessionService,
	exporter ports.ExportService,
	preview ports.PreviewRenderer,
	config entities.ServerConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		sessions:      sessions,
		exporter:      exporter,
		preview:       preview,
		config:        config,
		newSlideTitle: entities.DefaultSlideTitle,
		defaultFormat: "sng",
		logger:        logger.Named("http"),
		connMgr:       NewConnectionManager(),
		limiter:       newRateLimiter(300, time.Minute),
		metrics:       monitoring.NewServerMetrics(),
	}
}

// SetEditorDefaults sets the title given to new blank slides and the export
// format used when a request names none
func (s *Server) SetEditorDefaults(editor entities.EditorConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if editor.NewSlideTitle != "" {
		s.newSlideTitle = editor.NewSlideTitle
	}
	s.defaultFormat = editor.GetExportFormat()
}

// SetDefaultSession selects the session served at /
func (s *Server) SetDefaultSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultSession = id
}

// Metrics returns a snapshot of the server's request and edit counters
func (s *Server) Metrics() monitoring.Snapshot {
	return s.metrics.Snapshot()
}

// Start listens on host:port and serves in the background
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return fmt.Errorf("listening on %s:%d: %w", host, port, err)
	}

	managerCtx, cancel := context.WithCancel(ctx)
	s.connMgr = NewConnectionManager()
	go s.connMgr.Run(managerCtx)

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.listener = listener
	s.stopManager = cancel
	s.running = true

	srv := s.server
	go func() {
		s.logger.Info("http server listening", zap.String("addr", listener.Addr().String()))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop closes websocket clients and shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()
	s.stopManager()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	s.running = false
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

// NotifyClients sends an update event to connected websocket clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// manager returns the current connection manager
func (s *Server) manager() *ConnectionManager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connMgr
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the address the server listens on, or "" when stopped
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil || !s.running {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler builds the routed handler with CORS and middleware applied
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/formats", s.handleExportFormats).Methods(http.MethodGet)

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleCloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/text", s.handleSessionText).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/metadata", s.handleSetMetadata).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/slides", s.handleAddSlide).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/slides/{index:[0-9]+}", s.handleUpdateSlide).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/order", s.handleAddToOrder).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/order/move", s.handleMoveInOrder).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/order/{position:[0-9]+}", s.handleRemoveFromOrder).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/export", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/save", s.handleSave).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/preview", s.handlePreview).Methods(http.MethodGet)

	router.HandleFunc("/ws", s.handleWebSocket)
	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	router.Use(recoveryMiddleware(s.logger))
	router.Use(loggingMiddleware(s.logger))
	router.Use(metricsMiddleware(s.metrics))
	router.Use(s.limiter.middleware)
	router.Use(securityHeadersMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(router)
}

// broadcastSession pushes the current view of a session to its clients
func (s *Server) broadcastSession(session *entities.Session) {
	if !s.IsRunning() {
		return
	}
	event := ports.UpdateEvent{
		Type:      ports.EventTypeSessionUpdate,
		SessionID: session.ID,
		Timestamp: time.Now(),
		Data:      newSessionResponse(session),
	}
	if err := s.NotifyClients(event); err != nil {
		s.logger.Debug("session update not delivered", zap.Error(err))
	}
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
