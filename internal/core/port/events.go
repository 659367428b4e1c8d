package port

import (
	"context"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
)

// EventPublisher publishes coordinator activity to the message bus.
type EventPublisher interface {
	PublishLikeToggled(ctx context.Context, event domain.LikeToggledEvent) error
	PublishPostDeleted(ctx context.Context, event domain.PostDeletedEvent) error
	PublishCommentChanged(ctx context.Context, event domain.CommentChangedEvent) error
	PublishFollowChanged(ctx context.Context, event domain.FollowChangedEvent) error
	PublishIdentityChanged(ctx context.Context, event domain.IdentityChangedEvent) error
}
