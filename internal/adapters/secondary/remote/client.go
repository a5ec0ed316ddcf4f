package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// maxSongSize bounds the response body read on fetch
const maxSongSize = 10 << 20

// Client implements ports.RemoteSource over HTTP
type Client struct {
	http   ports.HTTPClient
	codec  ports.TextCodec
	logger *zap.Logger
}

var _ ports.RemoteSource = (*Client)(nil)

// NewClient creates a remote client from the remote configuration
func NewClient(cfg entities.RemoteConfig, codec ports.TextCodec, logger *zap.Logger) *Client {
	httpClient := ports.NewRealHTTPClient(ports.HTTPClientConfig{
		Timeout:         cfg.GetTimeout(),
		FollowRedirects: true,
		UserAgent:       cfg.GetUserAgent(),
	})
	return NewClientWithHTTP(httpClient, codec, logger)
}

// NewClientWithHTTP creates a remote client on top of an existing HTTP client
func NewClientWithHTTP(httpClient ports.HTTPClient, codec ports.TextCodec, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   httpClient,
		codec:  codec,
		logger: logger.Named("remote"),
	}
}

// Fetch downloads the song at url
func (c *Client) Fetch(ctx context.Context, url, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &LoadFailure{URL: url, Cause: err}
	}
	setAuthorization(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &LoadFailure{URL: url, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &LoadFailure{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSongSize))
	if err != nil {
		return "", &LoadFailure{URL: url, Cause: fmt.Errorf("reading body: %w", err)}
	}

	text, err := c.codec.Decode(data)
	if err != nil {
		return "", &LoadFailure{URL: url, Cause: err}
	}

	c.logger.Info("fetched song", zap.String("url", url), zap.Int("bytes", len(data)))
	return text, nil
}

// Put uploads text to url
func (c *Client) Put(ctx context.Context, url, token string, text string) error {
	body, err := c.codec.Encode(text)
	if err != nil {
		return &SaveFailure{URL: url, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return &SaveFailure{URL: url, Cause: err}
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	setAuthorization(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &SaveFailure{URL: url, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SaveFailure{URL: url, StatusCode: resp.StatusCode}
	}

	c.logger.Info("uploaded song", zap.String("url", url), zap.Int("bytes", len(body)))
	return nil
}

func setAuthorization(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
