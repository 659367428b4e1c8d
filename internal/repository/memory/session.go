// Package memory keeps the viewer's session in process memory. Used when no
// durable backend is configured and by tests.
package memory

import (
	"context"
	"sync"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/repository"
)

// SessionStore implements port.SessionPersistence without durability.
type SessionStore struct {
	mu      sync.RWMutex
	session *domain.Session
}

var _ port.SessionPersistence = (*SessionStore)(nil)

// NewSessionStore constructs an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Load returns the stored session or repository.ErrNotFound.
func (s *SessionStore) Load(context.Context) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, repository.ErrNotFound
	}
	return s.session.Clone(), nil
}

// Save replaces the stored session.
func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	s.session = session.Clone()
	s.mu.Unlock()
	return nil
}

// Clear drops the stored session.
func (s *SessionStore) Clear(context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	return nil
}
