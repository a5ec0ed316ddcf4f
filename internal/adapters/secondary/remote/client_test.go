package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fredcamaral/sngedit/internal/adapters/secondary/repository"
	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

func newTestClient(t *testing.T) *Client {
	return NewClient(entities.RemoteConfig{}, repository.SNGCodec{}, zaptest.NewLogger(t))
}

func TestClient_Fetch(t *testing.T) {
	t.Run("sends bearer token and decodes body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.Equal(t, "sngedit", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte("\xEF\xBB\xBF#Title=X\n---\nVers 1\nla"))
		}))
		defer server.Close()

		text, err := newTestClient(t).Fetch(context.Background(), server.URL, "secret")
		require.NoError(t, err)
		assert.Equal(t, "#Title=X\n---\nVers 1\nla", text)
	})

	t.Run("no token no header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("text"))
		}))
		defer server.Close()

		_, err := newTestClient(t).Fetch(context.Background(), server.URL, "")
		require.NoError(t, err)
	})

	t.Run("non-success status is terminal", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := newTestClient(t).Fetch(context.Background(), server.URL, "")
		require.Error(t, err)

		var loadErr *LoadFailure
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, http.StatusServiceUnavailable, loadErr.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(t).Fetch(context.Background(), url, "")
		var loadErr *LoadFailure
		require.True(t, errors.As(err, &loadErr))
		assert.Zero(t, loadErr.StatusCode)
		assert.NotNil(t, loadErr.Cause)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := newTestClient(t).Fetch(context.Background(), "://bad", "")
		var loadErr *LoadFailure
		assert.True(t, errors.As(err, &loadErr))
	})
}

func TestClient_Put(t *testing.T) {
	t.Run("uploads bom encoded text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "text/plain;charset=utf-8", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, "\xEF\xBB\xBF---\nChorus\nla", string(body))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		err := newTestClient(t).Put(context.Background(), server.URL, "tok", "---\nChorus\nla")
		require.NoError(t, err)
	})

	t.Run("non-success status", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		err := newTestClient(t).Put(context.Background(), server.URL, "", "x")
		var saveErr *SaveFailure
		require.True(t, errors.As(err, &saveErr))
		assert.Equal(t, http.StatusForbidden, saveErr.StatusCode)
		assert.Contains(t, err.Error(), "403")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := newTestClient(t).Put(ctx, server.URL, "", "x")
		var saveErr *SaveFailure
		require.True(t, errors.As(err, &saveErr))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
