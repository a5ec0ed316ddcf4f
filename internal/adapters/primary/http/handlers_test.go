package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/test/builders"
)

func (ts *testServer) createSession(t *testing.T, text string) SessionResponse {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/sessions", map[string]string{"text": text})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeSession(t, w)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Body.String(), `"metrics"`)
}

func TestServerMetrics(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t, builders.TitledSongText)

	w := ts.do(t, http.MethodPut, "/api/sessions/"+view.ID+"/metadata", map[string]string{"key": "Author", "value": "John Newton"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/sessions/"+view.ID+"/export?format=sng", nil)
	require.Equal(t, http.StatusOK, w.Code)

	ts.do(t, http.MethodGet, "/api/sessions/missing", nil)

	snap := ts.server.Metrics()
	assert.Equal(t, int64(4), snap.Requests)
	assert.Equal(t, int64(0), snap.ServerErrors)
	assert.Equal(t, int64(1), snap.Edits)
	assert.Equal(t, int64(1), snap.Exports["sng"])
}

func TestHandleExportFormats(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/formats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	for _, format := range []string{"sng", "markdown", "yaml", "html"} {
		assert.Contains(t, w.Body.String(), `"`+format+`"`)
	}
}

func TestHandleCreateSession(t *testing.T) {
	t.Run("titled text", func(t *testing.T) {
		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		assert.NotEmpty(t, view.ID)
		assert.True(t, view.Titled)
		assert.Equal(t, "text", view.Source.Kind)
		assert.Equal(t, "Amazing Grace", view.Metadata["Title"])
		require.Len(t, view.Slides, 3)
		assert.Equal(t, "Chorus", view.Slides[2].Title)
		assert.Equal(t, []int{0, 2, 1, 2}, view.Order)
		assert.Equal(t, []string{"Vers 1", "Chorus", "Vers 2", "Chorus"}, view.Labels)
	})

	t.Run("untitled text has no order", func(t *testing.T) {
		ts := newTestServer(t)
		view := ts.createSession(t, "#Title=Simple\n---\nHello\nWorld\n---\nFoo")

		assert.False(t, view.Titled)
		assert.Empty(t, view.Order)
		require.Len(t, view.Slides, 2)
		assert.Equal(t, "Hello", view.Slides[0].Title)
		assert.Equal(t, []string{"Hello", "World"}, view.Slides[0].Content)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(t, http.MethodPost, "/api/sessions", "{not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request")
	})

	t.Run("from url", func(t *testing.T) {
		var auth atomic.Value
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth.Store(r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, builders.TitledSongText)
		}))
		defer upstream.Close()

		ts := newTestServer(t)
		w := ts.do(t, http.MethodPost, "/api/sessions", map[string]string{
			"url":   upstream.URL + "/songs/1",
			"token": "secret",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		view := decodeSession(t, w)
		assert.Equal(t, "remote", view.Source.Kind)
		assert.Equal(t, upstream.URL+"/songs/1", view.Source.Location)
		assert.Equal(t, []int{0, 2, 1, 2}, view.Order)
		assert.Equal(t, "Bearer secret", auth.Load())
	})

	t.Run("upstream failure", func(t *testing.T) {
		upstream := httptest.NewServer(http.NotFoundHandler())
		defer upstream.Close()

		ts := newTestServer(t)
		w := ts.do(t, http.MethodPost, "/api/sessions", map[string]string{"url": upstream.URL})

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Remote song server request failed")
	})
}

func TestHandleGetAndCloseSession(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t, builders.TitledSongText)

	w := ts.do(t, http.MethodGet, "/api/sessions/"+view.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, view.ID, decodeSession(t, w).ID)

	w = ts.do(t, http.MethodDelete, "/api/sessions/"+view.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+view.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Resource not found")
}

func TestHandleSessionText(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t, builders.TitledSongText)

	w := ts.do(t, http.MethodGet, "/api/sessions/"+view.ID+"/text", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, builders.TitledSongText, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/sessions/missing/text", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSetMetadata(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{name: "new key", body: map[string]string{"key": "CCLI", "value": "22025"}, status: http.StatusOK},
		{name: "key is trimmed", body: map[string]string{"key": " Author ", "value": "John Newton"}, status: http.StatusOK},
		{name: "empty key", body: map[string]string{"key": " ", "value": "x"}, status: http.StatusBadRequest},
		{name: "key with equals", body: map[string]string{"key": "a=b", "value": "x"}, status: http.StatusBadRequest},
		{name: "value with newline", body: map[string]string{"key": "Author", "value": "a\nb"}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			view := ts.createSession(t, builders.TitledSongText)

			w := ts.do(t, http.MethodPut, "/api/sessions/"+view.ID+"/metadata", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				return
			}

			updated := decodeSession(t, w)
			assert.Equal(t, tt.body["value"], updated.Metadata[strings.TrimSpace(tt.body["key"])])
		})
	}

	t.Run("unknown session", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(t, http.MethodPut, "/api/sessions/missing/metadata", map[string]string{"key": "A", "value": "b"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("verse order replaces the playback order", func(t *testing.T) {
		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		w := ts.do(t, http.MethodPut, "/api/sessions/"+view.ID+"/metadata", map[string]string{"key": "VerseOrder", "value": "Chorus, Vers 1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, []int{2, 0}, decodeSession(t, w).Order)

		w = ts.do(t, http.MethodGet, "/api/sessions/"+view.ID+"/text", nil)
		assert.Contains(t, w.Body.String(), "#VerseOrder=Chorus, Vers 1")
	})
}

func TestHandleAddSlide(t *testing.T) {
	t.Run("blank slide gets the placeholder title", func(t *testing.T) {
		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		w := ts.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/slides", nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		updated := decodeSession(t, w)
		require.Len(t, updated.Slides, 4)
		assert.Equal(t, entities.DefaultSlideTitle, updated.Slides[3].Title)
		assert.Equal(t, []string{""}, updated.Slides[3].Content)
		assert.Equal(t, []int{0, 2, 1, 2}, updated.Order)
	})

	t.Run("configured placeholder title", func(t *testing.T) {
		ts := newTestServer(t)
		ts.server.SetEditorDefaults(entities.EditorConfig{NewSlideTitle: "Neue Folie"})
		view := ts.createSession(t, builders.TitledSongText)

		w := ts.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/slides", map[string]interface{}{})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Neue Folie", decodeSession(t, w).Slides[3].Title)
	})

	t.Run("titled slide", func(t *testing.T) {
		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		w := ts.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/slides", map[string]interface{}{
			"title":   "Bridge",
			"content": []string{"My chains are gone"},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		slide := decodeSession(t, w).Slides[3]
		assert.Equal(t, "Bridge", slide.Title)
		assert.Equal(t, []string{"My chains are gone"}, slide.Content)
	})

	t.Run("line break in content", func(t *testing.T) {
		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		w := ts.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/slides", map[string]interface{}{
			"content": []string{"one\ntwo"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleUpdateSlide(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t, builders.TitledSongText)
	base := "/api/sessions/" + view.ID + "/slides/"

	w := ts.do(t, http.MethodPut, base+"2", map[string]interface{}{"title": "Refrain"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeSession(t, w)
	assert.Equal(t, "Refrain", updated.Slides[2].Title)
	assert.Equal(t, []string{"Vers 1", "Refrain", "Vers 2", "Refrain"}, updated.Labels)
	assert.Equal(t, []string{"I once was lost but now am found", "Was blind but now I see"}, updated.Slides[2].Content)

	w = ts.do(t, http.MethodPut, base+"0", map[string]interface{}{"content": []string{"only line"}})
	require.Equal(t, http.StatusOK, w.Code)
	updated = decodeSession(t, w)
	assert.Equal(t, "Vers 1", updated.Slides[0].Title)
	assert.Equal(t, []string{"only line"}, updated.Slides[0].Content)

	w = ts.do(t, http.MethodPut, base+"7", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, base+"1", map[string]interface{}{"title": "a\r\nb"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, base+"1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleOrderCommands(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t, builders.TitledSongText)
	base := "/api/sessions/" + view.ID + "/order"

	w := ts.do(t, http.MethodPost, base+"/move", map[string]interface{}{"from": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int{2, 1, 2, 0}, decodeSession(t, w).Order)

	w = ts.do(t, http.MethodPost, base+"/move", map[string]interface{}{"from": 3, "to": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0, 2, 1, 2}, decodeSession(t, w).Order)

	w = ts.do(t, http.MethodDelete, base+"/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0, 2, 1}, decodeSession(t, w).Order)

	w = ts.do(t, http.MethodDelete, base+"/9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0, 2, 1}, decodeSession(t, w).Order)

	w = ts.do(t, http.MethodDelete, base+"/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0, 1}, decodeSession(t, w).Order)

	w = ts.do(t, http.MethodPost, base, map[string]interface{}{"slide": 2, "position": 1})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeSession(t, w)
	assert.Equal(t, []int{0, 2, 1}, updated.Order)
	assert.Equal(t, []string{"Vers 1", "Chorus", "Vers 2"}, updated.Labels)

	w = ts.do(t, http.MethodPost, base, map[string]interface{}{"slide": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0, 2, 1}, decodeSession(t, w).Order)

	w = ts.do(t, http.MethodPost, base, map[string]interface{}{"slide": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, base, map[string]interface{}{"position": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, base+"/move", map[string]interface{}{"to": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+view.ID+"/text", nil)
	assert.Contains(t, w.Body.String(), "#VerseOrder=Vers 1, Chorus, Vers 2")
}

func TestHandleOrderUntitled(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t, "Hello\n---\nFoo\n")
	require.False(t, view.Titled)

	w := ts.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/order", map[string]interface{}{"slide": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+view.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeSession(t, w)
	assert.Empty(t, updated.Order)
	assert.Empty(t, updated.Labels)
}

func TestHandleExport(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t, builders.TitledSongText)
	base := "/api/sessions/" + view.ID + "/export"

	t.Run("sng with bom", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, base+"?format=sng", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.Bytes()
		require.GreaterOrEqual(t, len(body), 3)
		assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, body[:3])
		assert.Equal(t, builders.TitledSongText, string(body[3:]))
		assert.Equal(t, `attachment; filename="Amazing-Grace.sng"`, w.Header().Get("Content-Disposition"))
	})

	t.Run("default format", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, base, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".sng")
	})

	t.Run("configured default format", func(t *testing.T) {
		other := newTestServer(t)
		other.server.SetEditorDefaults(entities.EditorConfig{ExportFormat: "yaml"})
		song := other.createSession(t, builders.TitledSongText)

		w := other.do(t, http.MethodGet, "/api/sessions/"+song.ID+"/export", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "Amazing-Grace.yaml")
		assert.Contains(t, w.Body.String(), "Amazing Grace")
	})

	t.Run("markdown", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, base+"?format=md", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Amazing Grace")
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".md")
	})

	t.Run("unknown format", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, base+"?format=pdf", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/sessions/missing/export", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleSave(t *testing.T) {
	t.Run("text session without target", func(t *testing.T) {
		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		w := ts.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/save", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("explicit url with bearer header", func(t *testing.T) {
		var (
			auth        atomic.Value
			contentType atomic.Value
			received    atomic.Value
		)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			auth.Store(r.Header.Get("Authorization"))
			contentType.Store(r.Header.Get("Content-Type"))
			received.Store(string(body))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer upstream.Close()

		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+view.ID+"/save",
			strings.NewReader(`{"url":"`+upstream.URL+`/songs/1"}`))
		req.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"saved":true`)
		assert.Equal(t, "Bearer abc", auth.Load())
		assert.Equal(t, "text/plain;charset=utf-8", contentType.Load())
		assert.Equal(t, "\ufeff"+builders.TitledSongText, received.Load())
	})

	t.Run("upstream rejects", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		ts := newTestServer(t)
		view := ts.createSession(t, builders.TitledSongText)

		w := ts.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/save", map[string]string{"url": upstream.URL})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("file session", func(t *testing.T) {
		ts := newTestServer(t)
		ts.files.files["/songs/grace.sng"] = builders.TitledSongText

		session, err := ts.sessions.OpenFile(context.Background(), "/songs/grace.sng")
		require.NoError(t, err)

		w := ts.do(t, http.MethodPut, "/api/sessions/"+session.ID+"/metadata", map[string]string{"key": "Key", "value": "G"})
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.do(t, http.MethodPost, "/api/sessions/"+session.ID+"/save", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, ts.files.get("/songs/grace.sng"), "#Key=G")
	})
}

func TestHandlePreviewAndIndex(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "POST /api/sessions")

	view := ts.createSession(t, builders.TitledSongText)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+view.ID+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Amazing Grace")
	assert.Contains(t, w.Body.String(), "Was blind but now I see")

	ts.server.SetDefaultSession(view.ID)
	w = ts.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Amazing Grace")

	w = ts.do(t, http.MethodGet, "/api/sessions/missing/preview", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Amazing Grace", want: "Amazing-Grace.sng"},
		{title: "  Größer/Gott  ", want: "GrößerGott.sng"},
		{title: "", want: "song.sng"},
		{title: "!!!", want: "song.sng"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			session := builders.NewDocumentBuilder().WithTitle(tt.title).BuildSession(true)
			assert.Equal(t, tt.want, exportFilename(session, ".sng"))
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errInvalidRequest))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, bearerToken(req))

	req.Header.Set("Authorization", "Bearer  tok ")
	assert.Equal(t, "tok", bearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, bearerToken(req))
}
