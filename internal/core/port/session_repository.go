package port

import (
	"context"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
)

// SessionPersistence stores the viewer's session under a single durable key.
type SessionPersistence interface {
	// Load returns repository.ErrNotFound when nothing is stored.
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}
