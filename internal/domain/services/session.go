package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// Session source kinds
const (
	SourceText   = "text"
	SourceFile   = "file"
	SourceRemote = "remote"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoSaveTarget is returned when a session has neither a file nor a URL to save to
	ErrNoSaveTarget = errors.New("session has no save target")

	// ErrNotFileBacked is returned when reloading a session not opened from a file
	ErrNotFileBacked = errors.New("session is not backed by a file")
)

// SessionService opens, edits and saves songs
type SessionService struct {
	parser ports.SongParser
	writer ports.SongSerializer
	files  ports.SongRepository
	remote ports.RemoteSource
	store  *SessionStore
	logger *zap.Logger
}

// NewSessionService creates a session service. remote may be nil when only
// local files are used.
func NewSessionService(
	parser ports.SongParser,
	writer ports.SongSerializer,
	files ports.SongRepository,
	remote ports.RemoteSource,
	store *SessionStore,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewSessionStore(entities.SessionsConfig{})
	}
	return &SessionService{
		parser: parser,
		writer: writer,
		files:  files,
		remote: remote,
		store:  store,
		logger: logger.Named("sessions"),
	}
}

// OpenText parses text into a new stored session
func (s *SessionService) OpenText(ctx context.Context, text string) (*entities.Session, error) {
	return s.open(text, entities.SessionSource{Kind: SourceText}), nil
}

// OpenFile loads a local song into a new stored session
func (s *SessionService) OpenFile(ctx context.Context, path string) (*entities.Session, error) {
	if path == "" {
		return nil, errors.New("song path cannot be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	text, err := s.files.Load(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("loading song: %w", err)
	}

	return s.open(text, entities.SessionSource{Kind: SourceFile, Location: absPath}), nil
}

// OpenRemote fetches a song over HTTP into a new stored session
func (s *SessionService) OpenRemote(ctx context.Context, url, token string) (*entities.Session, error) {
	if s.remote == nil {
		return nil, errors.New("remote source not configured")
	}
	if url == "" {
		return nil, errors.New("song url cannot be empty")
	}

	text, err := s.remote.Fetch(ctx, url, token)
	if err != nil {
		return nil, err
	}

	return s.open(text, entities.SessionSource{Kind: SourceRemote, Location: url}), nil
}

// Get returns a copy of a stored session
func (s *SessionService) Get(id string) (*entities.Session, error) {
	session, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Update applies fn to a stored session and returns the result
func (s *SessionService) Update(id string, fn ports.SessionMutator) (*entities.Session, error) {
	session, found, err := s.store.Update(id, fn)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Reload re-reads a file backed session from disk, replacing its document
// and order. Edits not yet saved are lost.
func (s *SessionService) Reload(ctx context.Context, id string) (*entities.Session, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if current.Source.Kind != SourceFile {
		return nil, fmt.Errorf("%w: %s", ErrNotFileBacked, id)
	}

	text, err := s.files.Load(ctx, current.Source.Location)
	if err != nil {
		return nil, fmt.Errorf("reloading song: %w", err)
	}

	fresh := s.parse(text)
	session, err := s.Update(id, func(session *entities.Session) error {
		session.Document = fresh.Document
		session.Order = fresh.Order
		session.Titled = fresh.Titled
		session.Modified = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("session reloaded",
		zap.String("session", id),
		zap.String("path", current.Source.Location),
		zap.Int("slides", session.Document.SlideCount()),
	)
	return session, nil
}

// Serialize renders a stored session as SNG text
func (s *SessionService) Serialize(id string) (string, error) {
	session, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return s.writer.Serialize(session.Document, session.Order, session.Titled), nil
}

// Save writes a session back. An explicit url wins; otherwise the session
// goes back where it came from.
func (s *SessionService) Save(ctx context.Context, id string, url, token string) error {
	session, err := s.Get(id)
	if err != nil {
		return err
	}

	text := s.writer.Serialize(session.Document, session.Order, session.Titled)

	target := url
	if target == "" && session.Source.Kind == SourceRemote {
		target = session.Source.Location
	}

	switch {
	case target != "":
		if s.remote == nil {
			return errors.New("remote source not configured")
		}
		if err := s.remote.Put(ctx, target, token, text); err != nil {
			return err
		}
		s.logger.Info("session uploaded", zap.String("session", id), zap.String("url", target))
	case session.Source.Kind == SourceFile:
		if err := s.files.Save(ctx, session.Source.Location, text); err != nil {
			return fmt.Errorf("saving song: %w", err)
		}
		s.logger.Info("session saved", zap.String("session", id), zap.String("path", session.Source.Location))
	default:
		return fmt.Errorf("%w: %s", ErrNoSaveTarget, id)
	}

	return nil
}

// Close forgets a session
func (s *SessionService) Close(id string) {
	s.store.Delete(id)
}

func (s *SessionService) open(text string, source entities.SessionSource) *entities.Session {
	session := s.parse(text)
	session.ID = uuid.NewString()
	session.Source = source

	s.store.Put(session)

	s.logger.Info("session opened",
		zap.String("session", session.ID),
		zap.String("source", source.Kind),
		zap.Bool("titled", session.Titled),
		zap.Int("slides", session.Document.SlideCount()),
	)
	return session
}

func (s *SessionService) parse(text string) *entities.Session {
	result := s.parser.Parse(text)
	return entities.NewSession(result.Document, result.Titled)
}

// Ensure SessionService implements ports.SessionService
var _ ports.SessionService = (*SessionService)(nil)
