package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/logger"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/repository"
)

var (
	// ErrNotAuthenticated indicates an operation that needs a signed-in viewer.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidID indicates a missing or non-positive entity id.
	ErrInvalidID = errors.New("invalid id")
	// ErrSuperseded is returned to an interaction overtaken by a newer one.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// SessionListener is notified after every session transition.
type SessionListener interface {
	SessionChanged(ctx context.Context, change domain.SessionChange)
}

// SessionListenerFunc adapts a function to SessionListener.
type SessionListenerFunc func(ctx context.Context, change domain.SessionChange)

// SessionChanged implements SessionListener.
func (f SessionListenerFunc) SessionChanged(ctx context.Context, change domain.SessionChange) {
	f(ctx, change)
}

// SessionStore is the single source of truth for the viewer's session. Memory
// and the durable persistence backend always hold the same value.
type SessionStore struct {
	persistence port.SessionPersistence
	logger      *zap.Logger

	// writeMu serializes transitions so persistence and listeners observe them in order.
	writeMu sync.Mutex

	mu        sync.RWMutex
	current   *domain.Session
	listeners []SessionListener
}

// NewSessionStore constructs an empty, signed-out store.
func NewSessionStore(persistence port.SessionPersistence) *SessionStore {
	return &SessionStore{
		persistence: persistence,
		logger:      zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (s *SessionStore) WithLogger(logger *zap.Logger) *SessionStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Subscribe registers a listener for future transitions.
func (s *SessionStore) Subscribe(listener SessionListener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// Load hydrates memory from persistence. A missing or unreadable record
// leaves the viewer signed out.
func (s *SessionStore) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	session, err := s.persistence.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		session = nil
	case errors.Is(err, repository.ErrCorrupted):
		s.logger.Warn("discarding unreadable persisted session", zap.Error(err))
		if clearErr := s.persistence.Clear(ctx); clearErr != nil {
			s.logger.Warn("failed to clear unreadable session", zap.Error(clearErr))
		}
		session = nil
	case err != nil:
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.current = session.Clone()
	s.mu.Unlock()

	if session != nil {
		s.logger.Info("session restored",
			zap.Int64("identity_id", session.IdentityID()),
			zap.String("email", logger.MaskEmail(session.Identity.Email)),
		)
	}
	return nil
}

// Get returns a copy of the current session, or nil when signed out.
func (s *SessionStore) Get() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// IdentityID returns the viewer id, 0 when signed out.
func (s *SessionStore) IdentityID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IdentityID()
}

// Credential implements port.CredentialSource.
func (s *SessionStore) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Credential
}

// Set replaces the session. nil signs the viewer out. A failed save leaves
// the previous session in place; a failed clear still signs out in memory.
func (s *SessionStore) Set(ctx context.Context, session *domain.Session) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.setLocked(ctx, session)
}

// UpdateCredential swaps the credential of the current session and keeps its
// identity. It reports false when nobody is signed in.
func (s *SessionStore) UpdateCredential(ctx context.Context, credential string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Get()
	if current == nil {
		return false, nil
	}
	if err := s.setLocked(ctx, current.WithCredential(credential)); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateIdentity replaces the identity of the current session after a profile edit.
func (s *SessionStore) UpdateIdentity(ctx context.Context, identity domain.Identity) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Get()
	if current == nil {
		return ErrNotAuthenticated
	}
	current.Identity = identity
	return s.setLocked(ctx, current)
}

func (s *SessionStore) setLocked(ctx context.Context, next *domain.Session) error {
	var persistErr error
	if next == nil {
		if err := s.persistence.Clear(ctx); err != nil {
			persistErr = fmt.Errorf("clear session: %w", err)
		}
	} else if err := s.persistence.Save(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	previous := s.current
	s.current = next.Clone()
	listeners := append([]SessionListener(nil), s.listeners...)
	s.mu.Unlock()

	change := domain.NewSessionChange(previous, next)
	s.logger.Debug("session changed",
		zap.Int64("previous_id", previous.IdentityID()),
		zap.Int64("current_id", next.IdentityID()),
		zap.Bool("identity_changed", change.IdentityChanged),
	)
	for _, listener := range listeners {
		listener.SessionChanged(ctx, change)
	}

	if persistErr != nil {
		s.logger.Warn("session cleared in memory only", zap.Error(persistErr))
	}
	return persistErr
}
