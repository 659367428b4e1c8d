package domain

import "time"

// Event is a user action or session transition fed into the coordinator.
type Event interface {
	EventType() string
}

// LikeToggledEvent is emitted after the backend accepted a like or unlike.
type LikeToggledEvent struct {
	EventID   string
	PostID    int64
	ActorID   int64
	Liked     bool
	Likes     int
	ToggledAt time.Time
}

// EventType implements Event.
func (LikeToggledEvent) EventType() string { return "social.post.like_toggled" }

// PostDeletedEvent is emitted after the viewer deleted one of their posts.
type PostDeletedEvent struct {
	EventID   string
	PostID    int64
	ActorID   int64
	DeletedAt time.Time
}

// EventType implements Event.
func (PostDeletedEvent) EventType() string { return "social.post.deleted" }

// CommentChangeKind enumerates comment mutations.
type CommentChangeKind string

const (
	CommentCreated CommentChangeKind = "created"
	CommentEdited  CommentChangeKind = "edited"
	CommentDeleted CommentChangeKind = "deleted"
)

// CommentChangedEvent is emitted after a comment was created, edited or deleted.
type CommentChangedEvent struct {
	EventID   string
	PostID    int64
	CommentID int64
	ActorID   int64
	Kind      CommentChangeKind
	ChangedAt time.Time
}

// EventType implements Event.
func (e CommentChangedEvent) EventType() string { return "social.comment." + string(e.Kind) }

// FollowChangedEvent is emitted after a follow or unfollow succeeded.
type FollowChangedEvent struct {
	EventID   string
	ActorID   int64
	TargetID  int64
	Followed  bool
	ChangedAt time.Time
}

// EventType implements Event.
func (FollowChangedEvent) EventType() string { return "social.follow.changed" }

// IdentityChangedEvent is emitted by the session store when the viewer signs in,
// signs out or switches account.
type IdentityChangedEvent struct {
	EventID    string
	PreviousID int64
	CurrentID  int64
	ChangedAt  time.Time
}

// EventType implements Event.
func (IdentityChangedEvent) EventType() string { return "social.session.identity_changed" }
