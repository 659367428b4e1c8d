package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/repository"
)

const (
	sessionTable      = "client_sessions"
	defaultSessionKey = "miniig_session"
)

const createSessionTable = `CREATE TABLE IF NOT EXISTS client_sessions (
	session_key TEXT PRIMARY KEY,
	payload     JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
)`

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore implements port.SessionPersistence on a single PostgreSQL row
// keyed by the configured session key.
type SessionStore struct {
	exec    pgExecutor
	key     string
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

var _ port.SessionPersistence = (*SessionStore)(nil)

// NewSessionStore constructs a store backed by any executor that satisfies pgExecutor.
func NewSessionStore(exec pgExecutor, sessionKey string) *SessionStore {
	key := strings.TrimSpace(sessionKey)
	if key == "" {
		key = defaultSessionKey
	}
	return &SessionStore{
		exec:    exec,
		key:     key,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *SessionStore) WithNow(now func() time.Time) *SessionStore {
	if now != nil {
		s.now = now
	}
	return s
}

// EnsureSchema creates the session table when it does not exist yet.
func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.exec.Exec(ctx, createSessionTable); err != nil {
		return fmt.Errorf("create session table: %w", err)
	}
	return nil
}

// Load reads the stored session, returning repository.ErrNotFound when no row
// exists and repository.ErrCorrupted when the payload no longer decodes.
func (s *SessionStore) Load(ctx context.Context) (*domain.Session, error) {
	stmt, args, err := s.builder.
		Select("payload").
		From(sessionTable).
		Where(squirrel.Eq{"session_key": s.key}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	var payload []byte
	if err := s.exec.QueryRow(ctx, stmt, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupted, err)
	}
	if session.Identity.ID <= 0 {
		return nil, fmt.Errorf("%w: identity id missing", repository.ErrCorrupted)
	}
	return &session, nil
}

// Save upserts the session row.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return s.Clear(ctx)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	stmt, args, err := s.builder.Insert(sessionTable).
		Columns("session_key", "payload", "updated_at").
		Values(s.key, payload, s.now()).
		Suffix("ON CONFLICT (session_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert session sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Clear deletes the session row. Deleting a missing row is not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	stmt, args, err := s.builder.Delete(sessionTable).
		Where(squirrel.Eq{"session_key": s.key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete session sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
