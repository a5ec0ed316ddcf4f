package ports

import (
	"context"
)

// SongRepository reads and writes SNG text on local storage
type SongRepository interface {
	// Load reads the file at path and returns its decoded text
	Load(ctx context.Context, path string) (string, error)

	// Save writes text to path in the export encoding
	Save(ctx context.Context, path string, text string) error
}

// RemoteSource fetches and uploads SNG text over HTTP. A token, when not
// empty, is sent as a bearer Authorization header.
type RemoteSource interface {
	Fetch(ctx context.Context, url, token string) (string, error)
	Put(ctx context.Context, url, token string, text string) error
}
