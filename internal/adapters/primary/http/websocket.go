package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// WebSocketClient is one editor tab following a session
type WebSocketClient struct {
	id        string
	sessionID string
	conn      *websocket.Conn
	send      chan ports.UpdateEvent
	manager   *ConnectionManager
	logger    *zap.Logger
}

// createUpgrader creates a WebSocket upgrader with origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.isValidOrigin,
	}
}

// handleWebSocket upgrades the request and follows ?session=<id>
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.IsRunning() {
		http.Error(w, "Live updates unavailable", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID != "" {
		if _, err := s.sessions.Get(sessionID); err != nil {
			s.handleError(w, err, statusFor(err))
			return
		}
	}

	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.metrics.RecordWebSocketConnection()

	manager := s.manager()
	client := &WebSocketClient{
		id:        uuid.NewString(),
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan ports.UpdateEvent, 64),
		manager:   manager,
		logger:    s.logger.With(zap.String("session", sessionID)),
	}

	// queued before registration so it is always the first message
	client.send <- ports.UpdateEvent{
		Type:      ports.EventTypeConnected,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data: map[string]string{
			"client_id": client.id,
		},
	}

	manager.RegisterConnection(&Connection{
		ID:        client.id,
		SessionID: sessionID,
		Send:      client.send,
	})

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so pongs and close frames are processed.
// Editors talk to the REST API; anything they send here is ignored.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.manager.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
	}
}

// writePump sends queued events and keepalive pings
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// isValidOrigin accepts same-host, loopback and configured CORS origins
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("websocket origin rejected", zap.String("origin", origin), zap.Error(err))
		return false
	}

	if originURL.Host == r.Host {
		return true
	}

	switch originURL.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}

	for _, allowed := range s.config.GetCORSOrigins() {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	s.logger.Warn("websocket origin rejected", zap.String("origin", origin))
	return false
}
