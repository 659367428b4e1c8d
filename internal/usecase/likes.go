package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

// DefaultLikesPreviewLimit bounds the "who liked this" sample.
const DefaultLikesPreviewLimit = 5

// LikeService serves like toggles, the bounded likes preview and full likers listings.
type LikeService struct {
	api      port.SocialAPI
	sessions *SessionStore
	previews *cache.Guarded[int64, domain.LikesPreview]
	limit    int
	logger   *zap.Logger
}

// NewLikeService wires the likes preview cache.
func NewLikeService(api port.SocialAPI, sessions *SessionStore, previews *cache.Guarded[int64, domain.LikesPreview], limit int) *LikeService {
	if limit <= 0 {
		limit = DefaultLikesPreviewLimit
	}
	return &LikeService{
		api:      api,
		sessions: sessions,
		previews: previews,
		limit:    limit,
		logger:   zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (s *LikeService) WithLogger(logger *zap.Logger) *LikeService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Preview returns the likes preview for postID, from cache when fresh.
func (s *LikeService) Preview(ctx context.Context, postID int64) (domain.LikesPreview, error) {
	if postID <= 0 {
		return domain.LikesPreview{}, ErrInvalidID
	}
	return s.previews.Fetch(ctx, postID, func(ctx context.Context) (domain.LikesPreview, error) {
		preview, err := s.api.LikesPreview(ctx, postID, s.limit)
		if err != nil {
			return domain.LikesPreview{}, fmt.Errorf("likes preview %d: %w", postID, err)
		}
		return preview, nil
	})
}

// All collects every user who liked postID.
func (s *LikeService) All(ctx context.Context, postID int64) (paginate.Listing[domain.UserSummary], error) {
	if postID <= 0 {
		return paginate.Listing[domain.UserSummary]{}, ErrInvalidID
	}
	return paginate.CollectAll(ctx, func(ctx context.Context, page int) (paginate.Page[domain.UserSummary], error) {
		return s.api.LikesPage(ctx, postID, page, paginate.PageSize)
	})
}

// SetLike likes or unlikes postID and returns the backend's answer.
func (s *LikeService) SetLike(ctx context.Context, postID int64, like bool) (domain.LikeResult, error) {
	if postID <= 0 {
		return domain.LikeResult{}, ErrInvalidID
	}
	if s.sessions.IdentityID() == 0 {
		return domain.LikeResult{}, ErrNotAuthenticated
	}
	res, err := s.api.SetLike(ctx, postID, like)
	if err != nil {
		return domain.LikeResult{}, fmt.Errorf("set like %d: %w", postID, err)
	}
	return res, nil
}

// Invalidate drops the cached preview of postID and rejects loads in flight.
func (s *LikeService) Invalidate(postID int64) {
	s.previews.Invalidate(postID)
}

// Clear drops every cached preview.
func (s *LikeService) Clear() {
	s.previews.Clear()
}
