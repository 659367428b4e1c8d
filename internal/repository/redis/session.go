package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	red "github.com/redis/go-redis/v9"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/repository"
)

const (
	defaultSessionPrefix = "social:client"
	defaultSessionKey    = "miniig_session"
)

// SessionStore keeps the serialized viewer session under a single Redis key.
type SessionStore struct {
	client *red.Client
	key    string
}

var _ port.SessionPersistence = (*SessionStore)(nil)

// NewSessionStore constructs a store writing to "<keyPrefix>:<sessionKey>".
func NewSessionStore(client *red.Client, keyPrefix, sessionKey string) *SessionStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	name := strings.TrimSpace(sessionKey)
	if name == "" {
		name = defaultSessionKey
	}
	return &SessionStore{client: client, key: fmt.Sprintf("%s:%s", prefix, name)}
}

// Key returns the Redis key holding the session.
func (s *SessionStore) Key() string {
	return s.key
}

// Load reads the stored session, returning repository.ErrNotFound when absent
// and repository.ErrCorrupted when the value no longer decodes.
func (s *SessionStore) Load(ctx context.Context) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return decodeSession(raw)
}

// Save overwrites the stored session. The key carries no TTL; the backend's
// refresh cookie decides how long a session lives.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return s.Clear(ctx)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Clear deletes the stored session.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func decodeSession(raw []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupted, err)
	}
	if session.Identity.ID <= 0 {
		return nil, fmt.Errorf("%w: identity id missing", repository.ErrCorrupted)
	}
	return &session, nil
}
