package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

var _ port.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func actorKey(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, actorID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	userID := actorKey(actorID)
	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}
	if userID != "" {
		message.Key = sarama.StringEncoder(userID)
	}

	return p.producer.Send(ctx, message)
}

// PublishLikeToggled publishes social.post.like_toggled events.
func (p *EventPublisher) PublishLikeToggled(ctx context.Context, event domain.LikeToggledEvent) error {
	payload := struct {
		PostID    int64     `json:"post_id"`
		Liked     bool      `json:"liked"`
		Likes     *int      `json:"likes,omitempty"`
		ToggledAt time.Time `json:"toggled_at"`
	}{
		PostID:    event.PostID,
		Liked:     event.Liked,
		ToggledAt: event.ToggledAt.UTC(),
	}
	if event.Likes >= 0 {
		likes := event.Likes
		payload.Likes = &likes
	}

	return p.publish(ctx, event.EventID, event.EventType(), event.ActorID, event.ToggledAt, payload)
}

// PublishPostDeleted publishes social.post.deleted events.
func (p *EventPublisher) PublishPostDeleted(ctx context.Context, event domain.PostDeletedEvent) error {
	payload := struct {
		PostID    int64     `json:"post_id"`
		DeletedAt time.Time `json:"deleted_at"`
	}{
		PostID:    event.PostID,
		DeletedAt: event.DeletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, event.EventType(), event.ActorID, event.DeletedAt, payload)
}

// PublishCommentChanged publishes social.comment.{created,edited,deleted} events.
func (p *EventPublisher) PublishCommentChanged(ctx context.Context, event domain.CommentChangedEvent) error {
	payload := struct {
		PostID    int64     `json:"post_id"`
		CommentID int64     `json:"comment_id"`
		Kind      string    `json:"kind"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		PostID:    event.PostID,
		CommentID: event.CommentID,
		Kind:      string(event.Kind),
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, event.EventType(), event.ActorID, event.ChangedAt, payload)
}

// PublishFollowChanged publishes social.follow.changed events.
func (p *EventPublisher) PublishFollowChanged(ctx context.Context, event domain.FollowChangedEvent) error {
	payload := struct {
		TargetID  int64     `json:"target_id"`
		Followed  bool      `json:"followed"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		TargetID:  event.TargetID,
		Followed:  event.Followed,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, event.EventType(), event.ActorID, event.ChangedAt, payload)
}

// PublishIdentityChanged publishes social.session.identity_changed events.
func (p *EventPublisher) PublishIdentityChanged(ctx context.Context, event domain.IdentityChangedEvent) error {
	payload := struct {
		PreviousID int64     `json:"previous_id,omitempty"`
		CurrentID  int64     `json:"current_id,omitempty"`
		ChangedAt  time.Time `json:"changed_at"`
	}{
		PreviousID: event.PreviousID,
		CurrentID:  event.CurrentID,
		ChangedAt:  event.ChangedAt.UTC(),
	}

	actor := event.CurrentID
	if actor == 0 {
		actor = event.PreviousID
	}
	return p.publish(ctx, event.EventID, event.EventType(), actor, event.ChangedAt, payload)
}
