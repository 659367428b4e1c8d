package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
)

// UserSearchLimit caps the hits of a user search.
const UserSearchLimit = 20

// UserService serves cached user profiles for hover cards and runs user
// searches.
type UserService struct {
	api      port.SocialAPI
	previews *cache.Guarded[int64, domain.UserProfile]
	search   cache.Sequence
}

// NewUserService wires the user preview cache.
func NewUserService(api port.SocialAPI, previews *cache.Guarded[int64, domain.UserProfile]) *UserService {
	return &UserService{api: api, previews: previews}
}

// Profile returns userID's profile, from cache when fresh.
func (s *UserService) Profile(ctx context.Context, userID int64) (domain.UserProfile, error) {
	if userID <= 0 {
		return domain.UserProfile{}, ErrInvalidID
	}
	return s.previews.Fetch(ctx, userID, func(ctx context.Context) (domain.UserProfile, error) {
		profile, err := s.api.GetUser(ctx, userID)
		if err != nil {
			return domain.UserProfile{}, fmt.Errorf("get user %d: %w", userID, err)
		}
		return profile, nil
	})
}

// Invalidate drops the cached profile of userID.
func (s *UserService) Invalidate(userID int64) {
	s.previews.Invalidate(userID)
}

// Search finds users by name or email. A blank query matches nobody; a search
// overtaken by a newer one returns ErrSuperseded.
func (s *UserService) Search(ctx context.Context, query string) ([]domain.UserCard, error) {
	ticket := s.search.Begin()
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.UserCard{}, nil
	}

	users, err := s.api.SearchUsers(ctx, query, UserSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	if !s.search.Current(ticket) {
		return nil, ErrSuperseded
	}
	if users == nil {
		users = []domain.UserCard{}
	}
	return users, nil
}
