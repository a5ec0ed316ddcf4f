package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/adapters/secondary/export"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/remote"
	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/services"
)

// errInvalidRequest marks request bodies that parse but cannot be applied
var errInvalidRequest = errors.New("invalid request")

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SessionResponse is the JSON view of an editing session
type SessionResponse struct {
	ID       string                 `json:"id"`
	Titled   bool                   `json:"titled"`
	Source   entities.SessionSource `json:"source"`
	Metadata map[string]string      `json:"metadata"`
	Slides   []SlideResponse        `json:"slides"`
	Order    []int                  `json:"order"`
	Labels   []string               `json:"labels"`
	Modified time.Time              `json:"modified"`
}

// SlideResponse is one slide in storage order
type SlideResponse struct {
	Index   int      `json:"index"`
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

type createSessionRequest struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Token string `json:"token"`
}

type metadataRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type addSlideRequest struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

type updateSlideRequest struct {
	Title   *string   `json:"title"`
	Content *[]string `json:"content"`
}

type addOrderRequest struct {
	Slide    *int `json:"slide"`
	Position *int `json:"position"`
}

type moveOrderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type saveRequest struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

func newSessionResponse(session *entities.Session) SessionResponse {
	slides := make([]SlideResponse, len(session.Document.Slides))
	for i, slide := range session.Document.Slides {
		content := slide.Content
		if content == nil {
			content = []string{}
		}
		slides[i] = SlideResponse{Index: i, Title: slide.Title, Content: content}
	}

	order := []int(session.Order)
	if order == nil {
		order = []int{}
	}

	return SessionResponse{
		ID:       session.ID,
		Titled:   session.Titled,
		Source:   session.Source,
		Metadata: session.Document.Metadata,
		Slides:   slides,
		Order:    order,
		Labels:   session.Labels(),
		Modified: session.Modified,
	}
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"websocket_clients": s.manager().Count(),
		"metrics":           s.metrics.Snapshot(),
		"time":              time.Now(),
	})
}

// handleExportFormats lists the export formats
func (s *Server) handleExportFormats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": s.exporter.GetSupportedFormats(),
	})
}

// handleIndex serves the preview of the song the server was started with
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	id := s.defaultSession
	s.mu.RUnlock()

	if id == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "sngedit: open a session with POST /api/sessions\n")
		return
	}

	s.renderPreview(w, r, id)
}

// handleCreateSession opens a session from inline text or a URL
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	var (
		session *entities.Session
		err     error
	)
	if req.URL != "" {
		session, err = s.sessions.OpenRemote(r.Context(), req.URL, req.Token)
	} else {
		session, err = s.sessions.OpenText(r.Context(), req.Text)
	}
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	s.writeJSON(w, http.StatusCreated, newSessionResponse(session))
}

// handleGetSession returns the session view
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// handleCloseSession forgets a session
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Close(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionText returns the session serialized as SNG text
func (s *Server) handleSessionText(w http.ResponseWriter, r *http.Request) {
	text, err := s.sessions.Serialize(mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

// handleSetMetadata sets one metadata value
func (s *Server) handleSetMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	key := strings.TrimSpace(req.Key)
	if key == "" || strings.Contains(key, "=") || hasLineBreak(key) || hasLineBreak(req.Value) {
		s.handleError(w, fmt.Errorf("%w: metadata key %q", errInvalidRequest, req.Key), http.StatusBadRequest)
		return
	}

	s.mutate(w, r, http.StatusOK, func(session *entities.Session) error {
		session.SetMetadata(key, req.Value)
		return nil
	})
}

// handleAddSlide appends a slide
func (s *Server) handleAddSlide(w http.ResponseWriter, r *http.Request) {
	var req addSlideRequest
	if err := s.decodeJSON(w, r, &req, true); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	if hasLineBreak(req.Title) || anyLineBreak(req.Content) {
		s.handleError(w, fmt.Errorf("%w: line breaks in slide", errInvalidRequest), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	title := req.Title
	if title == "" && len(req.Content) == 0 {
		title = s.newSlideTitle
	}
	s.mu.RUnlock()

	s.mutate(w, r, http.StatusCreated, func(session *entities.Session) error {
		session.AddSlide(title, req.Content)
		return nil
	})
}

// handleUpdateSlide changes a slide's title and/or content
func (s *Server) handleUpdateSlide(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	var req updateSlideRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	if (req.Title != nil && hasLineBreak(*req.Title)) || (req.Content != nil && anyLineBreak(*req.Content)) {
		s.handleError(w, fmt.Errorf("%w: line breaks in slide", errInvalidRequest), http.StatusBadRequest)
		return
	}

	s.mutate(w, r, http.StatusOK, func(session *entities.Session) error {
		if session.Document.GetSlide(index) == nil {
			return fmt.Errorf("%w: slide %d", errInvalidRequest, index)
		}
		if req.Title != nil {
			session.SetTitle(index, *req.Title)
		}
		if req.Content != nil {
			session.SetContent(index, *req.Content)
		}
		return nil
	})
}

// handleAddToOrder references a slide in the playback order
func (s *Server) handleAddToOrder(w http.ResponseWriter, r *http.Request) {
	var req addOrderRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	if req.Slide == nil {
		s.handleError(w, fmt.Errorf("%w: slide is required", errInvalidRequest), http.StatusBadRequest)
		return
	}

	s.mutate(w, r, http.StatusOK, func(session *entities.Session) error {
		if !session.Titled {
			return fmt.Errorf("%w: untitled songs have no playback order", errInvalidRequest)
		}
		if session.Document.GetSlide(*req.Slide) == nil {
			return fmt.Errorf("%w: slide %d", errInvalidRequest, *req.Slide)
		}
		session.AddToOrder(*req.Slide, req.Position)
		return nil
	})
}

// handleMoveInOrder moves a playback entry
func (s *Server) handleMoveInOrder(w http.ResponseWriter, r *http.Request) {
	var req moveOrderRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	if req.From == nil {
		s.handleError(w, fmt.Errorf("%w: from is required", errInvalidRequest), http.StatusBadRequest)
		return
	}

	s.mutate(w, r, http.StatusOK, func(session *entities.Session) error {
		session.MoveInOrder(*req.From, req.To)
		return nil
	})
}

// handleRemoveFromOrder drops a playback entry
func (s *Server) handleRemoveFromOrder(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(mux.Vars(r)["position"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	s.mutate(w, r, http.StatusOK, func(session *entities.Session) error {
		session.RemoveFromOrder(position)
		return nil
	})
}

// handleExport downloads the session in the requested format
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		s.mu.RLock()
		format = s.defaultFormat
		s.mu.RUnlock()
	}

	start := time.Now()
	result, err := s.exporter.Export(r.Context(), session, format)
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}
	s.metrics.RecordExport(result.Format, time.Since(start))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exportFilename(session, result.Extension)))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		s.logger.Error("write export response", zap.Error(err))
	}
}

// handleSave writes the session back to its file or to a URL
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := s.decodeJSON(w, r, &req, true); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		req.Token = bearerToken(r)
	}

	id := mux.Vars(r)["id"]
	if err := s.sessions.Save(r.Context(), id, req.URL, req.Token); err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"saved": true,
		"time":  time.Now(),
	})
}

// handlePreview serves the rendered preview page of a session
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.renderPreview(w, r, mux.Vars(r)["id"])
}

func (s *Server) renderPreview(w http.ResponseWriter, r *http.Request, id string) {
	session, err := s.sessions.Get(id)
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	page, err := s.preview.RenderPage(r.Context(), session)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		s.logger.Error("write preview response", zap.Error(err))
	}
}

// mutate applies fn to the session named in the route, pushes the result to
// websocket clients and writes it back
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(*entities.Session) error) {
	session, err := s.sessions.Update(mux.Vars(r)["id"], fn)
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	s.metrics.RecordEdit()
	s.broadcastSession(session)
	s.writeJSON(w, status, newSessionResponse(session))
}

// decodeJSON reads a bounded JSON body into v. An empty body is accepted
// when optional is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var (
		loadFailure *remote.LoadFailure
		saveFailure *remote.SaveFailure
		exportErr   *export.ExportError
	)

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoSaveTarget), errors.Is(err, services.ErrNotFileBacked):
		return http.StatusConflict
	case errors.As(err, &loadFailure), errors.As(err, &saveFailure):
		return http.StatusBadGateway
	case errors.As(err, &exportErr) && exportErr.Type == export.ErrorTypeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusConflict:
		message = "Session cannot be saved or reloaded this way"
	case http.StatusBadGateway:
		message = "Remote song server request failed"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	s.logger.Warn("http error", zap.Int("status", status), zap.Error(err))

	s.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode json response", zap.Error(err))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

func anyLineBreak(lines []string) bool {
	for _, line := range lines {
		if hasLineBreak(line) {
			return true
		}
	}
	return false
}

// exportFilename builds a download name from the song title
func exportFilename(session *entities.Session, ext string) string {
	var b strings.Builder
	for _, r := range session.Document.Title() {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "song"
	}
	return name + ext
}
