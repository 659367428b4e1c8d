package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when
// kafka.enabled is false.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, actorID int64, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Debug("stub event published", append([]zap.Field{
		zap.String("event_type", eventType),
		zap.Int64("actor_id", actorID),
		zap.Time("timestamp", at.UTC()),
	}, fields...)...)
}

// PublishLikeToggled logs social.post.like_toggled events.
func (p *StubPublisher) PublishLikeToggled(_ context.Context, event domain.LikeToggledEvent) error {
	p.logEvent(event.EventType(), event.ActorID, event.ToggledAt,
		zap.Int64("post_id", event.PostID),
		zap.Bool("liked", event.Liked),
		zap.Int("likes", event.Likes),
	)
	return nil
}

// PublishPostDeleted logs social.post.deleted events.
func (p *StubPublisher) PublishPostDeleted(_ context.Context, event domain.PostDeletedEvent) error {
	p.logEvent(event.EventType(), event.ActorID, event.DeletedAt, zap.Int64("post_id", event.PostID))
	return nil
}

// PublishCommentChanged logs social.comment.* events.
func (p *StubPublisher) PublishCommentChanged(_ context.Context, event domain.CommentChangedEvent) error {
	p.logEvent(event.EventType(), event.ActorID, event.ChangedAt,
		zap.Int64("post_id", event.PostID),
		zap.Int64("comment_id", event.CommentID),
	)
	return nil
}

// PublishFollowChanged logs social.follow.changed events.
func (p *StubPublisher) PublishFollowChanged(_ context.Context, event domain.FollowChangedEvent) error {
	p.logEvent(event.EventType(), event.ActorID, event.ChangedAt,
		zap.Int64("target_id", event.TargetID),
		zap.Bool("followed", event.Followed),
	)
	return nil
}

// PublishIdentityChanged logs social.session.identity_changed events.
func (p *StubPublisher) PublishIdentityChanged(_ context.Context, event domain.IdentityChangedEvent) error {
	p.logEvent(event.EventType(), event.CurrentID, event.ChangedAt,
		zap.Int64("previous_id", event.PreviousID),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
