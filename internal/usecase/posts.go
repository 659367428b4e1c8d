package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
)

const (
	// MaxPostLength is the longest post body the backend stores, in characters.
	MaxPostLength = 500
	// ProfileTabPageSize is the page a profile tab loads into the listing.
	ProfileTabPageSize = 50
)

var (
	// ErrEmptyPost rejects blank post bodies before they reach the backend.
	ErrEmptyPost = errors.New("post content is required")
	// ErrPostTooLong rejects bodies the backend would refuse.
	ErrPostTooLong = fmt.Errorf("post content exceeds %d characters", MaxPostLength)
	// ErrUnsupportedImage rejects uploads with an extension the backend refuses.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "webp": {},
}

// PostService keeps the local post listing and runs post searches.
type PostService struct {
	api      port.SocialAPI
	sessions *SessionStore
	logger   *zap.Logger

	search cache.Sequence
	loads  cache.Sequence

	mu    sync.RWMutex
	posts []domain.Post
}

// NewPostService constructs an empty listing.
func NewPostService(api port.SocialAPI, sessions *SessionStore) *PostService {
	return &PostService{
		api:      api,
		sessions: sessions,
		logger:   zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (s *PostService) WithLogger(logger *zap.Logger) *PostService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Load replaces the listing with a fresh page, newest first. A load overtaken
// by a newer one returns ErrSuperseded and leaves the listing alone.
func (s *PostService) Load(ctx context.Context, query domain.PostQuery) ([]domain.Post, error) {
	return s.replace(ctx, "list posts", func(ctx context.Context) ([]domain.Post, error) {
		return s.api.ListPosts(ctx, query)
	})
}

// LoadAuthored replaces the listing with the posts written by userID.
func (s *PostService) LoadAuthored(ctx context.Context, userID int64) ([]domain.Post, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	return s.replace(ctx, fmt.Sprintf("list posts of user %d", userID), func(ctx context.Context) ([]domain.Post, error) {
		return s.api.UserPosts(ctx, userID, 1, ProfileTabPageSize)
	})
}

// LoadLiked replaces the listing with the posts userID liked.
func (s *PostService) LoadLiked(ctx context.Context, userID int64) ([]domain.Post, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	return s.replace(ctx, fmt.Sprintf("list posts liked by user %d", userID), func(ctx context.Context) ([]domain.Post, error) {
		return s.api.UserLikedPosts(ctx, userID, 1, ProfileTabPageSize)
	})
}

func (s *PostService) replace(ctx context.Context, op string, fetch func(context.Context) ([]domain.Post, error)) ([]domain.Post, error) {
	ticket := s.loads.Begin()
	posts, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	sortNewestFirst(posts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loads.Current(ticket) {
		return nil, ErrSuperseded
	}
	s.posts = posts
	return clonePosts(s.posts), nil
}

// Clear empties the listing and drops any load still in flight.
func (s *PostService) Clear() {
	s.loads.Supersede()
	s.mu.Lock()
	s.posts = []domain.Post{}
	s.mu.Unlock()
}

// Search runs a text search. Results of a search overtaken by a newer one
// are dropped with ErrSuperseded.
func (s *PostService) Search(ctx context.Context, text string, followOnly bool) ([]domain.Post, error) {
	ticket := s.search.Begin()
	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.Post{}, nil
	}
	if followOnly && s.sessions.IdentityID() == 0 {
		return nil, ErrNotAuthenticated
	}

	posts, err := s.api.SearchPosts(ctx, text, followOnly)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	if !s.search.Current(ticket) {
		s.logger.Debug("dropped superseded search", zap.String("query", text))
		return nil, ErrSuperseded
	}
	sortNewestFirst(posts)
	return posts, nil
}

// Create publishes draft. An attached image is uploaded first and the
// returned URL becomes the post picture.
func (s *PostService) Create(ctx context.Context, draft domain.NewPost) (domain.Post, error) {
	if s.sessions.IdentityID() == 0 {
		return domain.Post{}, ErrNotAuthenticated
	}
	draft.Content = strings.TrimSpace(draft.Content)
	if draft.Content == "" {
		return domain.Post{}, ErrEmptyPost
	}
	if utf8.RuneCountInString(draft.Content) > MaxPostLength {
		return domain.Post{}, ErrPostTooLong
	}

	if img := draft.Image; img != nil && len(img.Data) > 0 {
		if !AllowedImage(img.Filename) {
			return domain.Post{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, img.Filename)
		}
		picture, err := s.api.UploadImage(ctx, *img)
		if err != nil {
			return domain.Post{}, fmt.Errorf("upload image: %w", err)
		}
		s.logger.Debug("uploaded post image",
			zap.String("filename", img.Filename),
			zap.Int("bytes", len(img.Data)),
		)
		draft.Picture = picture
	}

	post, err := s.api.CreatePost(ctx, draft)
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// AllowedImage reports whether filename has an image extension the backend
// accepts.
func AllowedImage(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	_, ok := imageExtensions[ext]
	return ok
}

// Delete removes postID on the backend.
func (s *PostService) Delete(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return ErrInvalidID
	}
	if s.sessions.IdentityID() == 0 {
		return ErrNotAuthenticated
	}
	if err := s.api.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post %d: %w", postID, err)
	}
	return nil
}

// Posts returns a copy of the local listing.
func (s *PostService) Posts() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// Get returns the local copy of postID.
func (s *PostService) Get(postID int64) (domain.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == postID {
			return p, true
		}
	}
	return domain.Post{}, false
}

// Patch applies fn to the local copy of postID and reports whether it exists.
func (s *PostService) Patch(postID int64, fn func(*domain.Post)) (domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			fn(&s.posts[i])
			return s.posts[i], true
		}
	}
	return domain.Post{}, false
}

// Remove drops postID from the local listing.
func (s *PostService) Remove(postID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return true
		}
	}
	return false
}

func sortNewestFirst(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func clonePosts(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)
	return out
}
