package services

import (
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// SessionStore keeps open sessions in memory and forgets idle ones after the
// configured TTL. Sessions are only touched under the store lock; callers
// get copies.
type SessionStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewSessionStore creates a store using the session TTL and cleanup interval
func NewSessionStore(cfg entities.SessionsConfig) *SessionStore {
	return &SessionStore{
		cache: cache.New(cfg.GetTTL(), cfg.GetCleanupInterval()),
	}
}

// Put stores a copy of session under its ID
func (s *SessionStore) Put(session *entities.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(session.ID, session.Clone(), cache.DefaultExpiration)
}

// Get returns a copy of the session and refreshes its expiry
func (s *SessionStore) Get(id string) (*entities.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.lookup(id)
	if !ok {
		return nil, false
	}
	s.cache.Set(id, session, cache.DefaultExpiration)
	return session.Clone(), true
}

// Update applies fn to the stored session. When fn fails the stored value is
// left untouched.
func (s *SessionStore) Update(id string, fn func(*entities.Session) error) (*entities.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lookup(id)
	if !ok {
		return nil, false, nil
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, true, err
	}

	working.ID = id
	s.cache.Set(id, working, cache.DefaultExpiration)
	return working.Clone(), true, nil
}

// Delete forgets a session
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(id)
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

func (s *SessionStore) lookup(id string) (*entities.Session, bool) {
	value, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	session, ok := value.(*entities.Session)
	return session, ok
}
