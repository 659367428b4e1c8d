package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
)

// CommentAgent edits and deletes individual comments.
type CommentAgent interface {
	EditComment(ctx context.Context, postID, commentID int64, content string) (domain.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64) error
}

// CommentHandler exposes comment edits and deletes.
type CommentHandler struct {
	agent CommentAgent
}

// NewCommentHandler constructs a comment handler.
func NewCommentHandler(agent CommentAgent) *CommentHandler {
	return &CommentHandler{agent: agent}
}

// RegisterRoutes binds comment routes to r.
func (h *CommentHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.PATCH("/:id", h.Edit)
	r.DELETE("/:id", h.Delete)
}

// Edit replaces the content of a comment.
func (h *CommentHandler) Edit(c *gin.Context) {
	commentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid comment payload"))
		return
	}
	comment, err := h.agent.EditComment(c.Request.Context(), req.PostID, commentID, req.Content)
	if err != nil {
		respondError(c, err, "failed to edit comment")
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete removes a comment. postId names the thread to reload.
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	postID, err := strconv.ParseInt(c.Query("postId"), 10, 64)
	if err != nil || postID <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "postId is required"))
		return
	}
	if err := h.agent.DeleteComment(c.Request.Context(), postID, commentID); err != nil {
		respondError(c, err, "failed to delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}
