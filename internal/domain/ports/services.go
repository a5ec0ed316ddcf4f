package ports

import (
	"context"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// SessionMutator applies one edit to a session
type SessionMutator func(session *entities.Session) error

// SessionService manages editing sessions
type SessionService interface {
	// OpenText parses text into a new stored session
	OpenText(ctx context.Context, text string) (*entities.Session, error)

	// OpenFile loads a local song into a new stored session
	OpenFile(ctx context.Context, path string) (*entities.Session, error)

	// OpenRemote fetches a song over HTTP into a new stored session
	OpenRemote(ctx context.Context, url, token string) (*entities.Session, error)

	// Get returns a stored session
	Get(id string) (*entities.Session, error)

	// Update applies fn to a stored session under the store lock
	Update(id string, fn SessionMutator) (*entities.Session, error)

	// Reload re-reads a file backed session from disk
	Reload(ctx context.Context, id string) (*entities.Session, error)

	// Serialize renders a stored session as SNG text
	Serialize(id string) (string, error)

	// Save writes a stored session back to its file, or to url when given
	Save(ctx context.Context, id string, url, token string) error

	// Close forgets a session
	Close(id string)
}

// ExportResult is the output of an export
type ExportResult struct {
	Format      string
	ContentType string
	Extension   string
	Data        []byte
}

// ExportService converts sessions into other formats
type ExportService interface {
	// Export renders session in format
	Export(ctx context.Context, session *entities.Session, format string) (*ExportResult, error)

	// GetSupportedFormats returns a list of supported export formats
	GetSupportedFormats() []string
}

// BrowserLauncher defines the interface for launching browsers
type BrowserLauncher interface {
	// Launch opens a URL in the default browser
	Launch(url string, noOpen bool) error
}
