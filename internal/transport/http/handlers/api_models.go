package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/transport/http/middleware"
)

// ErrorResponse represents a standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request's trace id.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
}

// ProfilePatchRequest carries optional profile edits.
type ProfilePatchRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatarUrl"`
}

// CommentRequest is the body of comment create and edit calls. PostID is only
// read on edit, where it names the thread to reload.
type CommentRequest struct {
	Content string `json:"content"`
	PostID  int64  `json:"postId"`
}

// CreatePostRequest is the compose form, sent as JSON or as form fields.
type CreatePostRequest struct {
	Content string `json:"content" form:"content"`
	Picture string `json:"picture" form:"picture"`
}

// LikeRequest optionally pins the desired like state. Without it the like
// flips.
type LikeRequest struct {
	Liked *bool `json:"liked"`
}

// LikeResponse reports the like state after a like call.
type LikeResponse struct {
	Liked bool         `json:"liked"`
	Likes *int         `json:"likes,omitempty"`
	Post  *domain.Post `json:"post,omitempty"`
}

// LikesPreviewResponse bundles the preview with the popover it renders into.
type LikesPreviewResponse struct {
	Preview domain.LikesPreview `json:"preview"`
	Popover domain.Popover      `json:"popover"`
}

// UserPreviewResponse bundles the hover card with its popover.
type UserPreviewResponse struct {
	Card    domain.UserCard `json:"card"`
	Popover domain.Popover  `json:"popover"`
}

// CommentsResponse bundles a thread with its panel.
type CommentsResponse struct {
	Thread domain.CommentThread `json:"thread"`
	Panel  domain.Panel         `json:"panel"`
}

// PostsResponse wraps a post listing.
type PostsResponse struct {
	Items []domain.Post `json:"items"`
}

// ProfileCommentsResponse wraps the comments tab of a profile.
type ProfileCommentsResponse struct {
	Items []domain.ProfileComment `json:"items"`
}

// FollowResponse reports a follow relationship.
type FollowResponse struct {
	UserID   int64 `json:"userId"`
	Followed bool  `json:"followed"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse lists the result of every readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
