package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

// ErrEmptyComment rejects blank comment bodies before they reach the backend.
var ErrEmptyComment = errors.New("comment content is required")

// ProfileCommentsPageSize is the page the profile comments tab reads.
const ProfileCommentsPageSize = 100

// CommentService serves per-post comment threads and comment mutations.
type CommentService struct {
	api      port.SocialAPI
	sessions *SessionStore
	threads  *cache.Guarded[int64, domain.CommentThread]
	logger   *zap.Logger
}

// NewCommentService wires the comment thread cache.
func NewCommentService(api port.SocialAPI, sessions *SessionStore, threads *cache.Guarded[int64, domain.CommentThread]) *CommentService {
	return &CommentService{
		api:      api,
		sessions: sessions,
		threads:  threads,
		logger:   zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (s *CommentService) WithLogger(logger *zap.Logger) *CommentService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Thread returns every comment of postID. force bypasses the cache.
func (s *CommentService) Thread(ctx context.Context, postID int64, force bool) (domain.CommentThread, error) {
	if postID <= 0 {
		return domain.CommentThread{}, ErrInvalidID
	}
	load := func(ctx context.Context) (domain.CommentThread, error) {
		listing, err := paginate.CollectAll(ctx, func(ctx context.Context, page int) (paginate.Page[domain.Comment], error) {
			return s.api.CommentsPage(ctx, postID, page, paginate.PageSize)
		})
		if err != nil {
			return domain.CommentThread{}, fmt.Errorf("load comments %d: %w", postID, err)
		}
		if listing.Truncated {
			s.logger.Warn("comment thread truncated at page ceiling", zap.Int64("post_id", postID))
		}
		return domain.CommentThread{PostID: postID, Total: listing.Total, Items: listing.Items}, nil
	}
	if force {
		return s.threads.Reload(ctx, postID, load)
	}
	return s.threads.Fetch(ctx, postID, load)
}

// Create posts a new comment on postID.
func (s *CommentService) Create(ctx context.Context, postID int64, content string) (domain.Comment, error) {
	if postID <= 0 {
		return domain.Comment{}, ErrInvalidID
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, ErrEmptyComment
	}
	if s.sessions.IdentityID() == 0 {
		return domain.Comment{}, ErrNotAuthenticated
	}
	comment, err := s.api.CreateComment(ctx, postID, content)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("create comment on %d: %w", postID, err)
	}
	if comment.PostID == 0 {
		comment.PostID = postID
	}
	return comment, nil
}

// Edit replaces the body of commentID.
func (s *CommentService) Edit(ctx context.Context, commentID int64, content string) (domain.Comment, error) {
	if commentID <= 0 {
		return domain.Comment{}, ErrInvalidID
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, ErrEmptyComment
	}
	if s.sessions.IdentityID() == 0 {
		return domain.Comment{}, ErrNotAuthenticated
	}
	comment, err := s.api.EditComment(ctx, commentID, content)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("edit comment %d: %w", commentID, err)
	}
	return comment, nil
}

// Delete removes commentID.
func (s *CommentService) Delete(ctx context.Context, commentID int64) error {
	if commentID <= 0 {
		return ErrInvalidID
	}
	if s.sessions.IdentityID() == 0 {
		return ErrNotAuthenticated
	}
	if err := s.api.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}

// ByUser lists the comments userID left on any post. Only the first page is
// read and nothing is cached.
func (s *CommentService) ByUser(ctx context.Context, userID int64) ([]domain.ProfileComment, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	comments, err := s.api.UserComments(ctx, userID, 1, ProfileCommentsPageSize)
	if err != nil {
		return nil, fmt.Errorf("list comments of user %d: %w", userID, err)
	}
	if comments == nil {
		comments = []domain.ProfileComment{}
	}
	return comments, nil
}

// Invalidate drops the cached thread of postID and rejects loads in flight.
func (s *CommentService) Invalidate(postID int64) {
	s.threads.Invalidate(postID)
}
