package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/repository"
)

var errStubNotConfigured = errors.New("stub not configured")

// stubSocialAPI answers through optional function fields and counts calls.
type stubSocialAPI struct {
	login         func(email, password string) (*domain.Session, error)
	register      func(form domain.Registration) (*domain.Session, error)
	logout        func() error
	updateMe      func(patch domain.ProfilePatch) (domain.Identity, error)
	getUser       func(userID int64) (domain.UserProfile, error)
	followStatus  func(userID int64) (bool, error)
	setFollow     func(userID int64, follow bool) (bool, error)
	followingPage func(userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error)
	followersPage func(userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error)
	listPosts     func(query domain.PostQuery) ([]domain.Post, error)
	searchPosts   func(text string, followOnly bool) ([]domain.Post, error)
	deletePost    func(postID int64) error
	setLike       func(postID int64, like bool) (domain.LikeResult, error)
	likesPreview  func(postID int64, limit int) (domain.LikesPreview, error)
	likesPage     func(postID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error)
	commentsPage  func(postID int64, page, pageSize int) (paginate.Page[domain.Comment], error)
	createComment func(postID int64, content string) (domain.Comment, error)
	editComment   func(commentID int64, content string) (domain.Comment, error)
	deleteComment func(commentID int64) error
	createPost    func(post domain.NewPost) (domain.Post, error)
	uploadImage   func(image domain.ImageUpload) (string, error)
	searchUsers   func(query string, limit int) ([]domain.UserCard, error)
	userPosts     func(userID int64, page, pageSize int) ([]domain.Post, error)
	userLiked     func(userID int64, page, pageSize int) ([]domain.Post, error)
	userComments  func(userID int64, page, pageSize int) ([]domain.ProfileComment, error)

	followStatusCalls  atomic.Int32
	followingPageCalls atomic.Int32
	likesPreviewCalls  atomic.Int32
	commentsPageCalls  atomic.Int32
	getUserCalls       atomic.Int32
	uploadCalls        atomic.Int32
	listPostsCalls     atomic.Int32
}

var _ port.SocialAPI = (*stubSocialAPI)(nil)

func (s *stubSocialAPI) Login(_ context.Context, email, password string) (*domain.Session, error) {
	if s.login == nil {
		return nil, errStubNotConfigured
	}
	return s.login(email, password)
}

func (s *stubSocialAPI) Register(_ context.Context, form domain.Registration) (*domain.Session, error) {
	if s.register == nil {
		return nil, errStubNotConfigured
	}
	return s.register(form)
}

func (s *stubSocialAPI) Logout(context.Context) error {
	if s.logout == nil {
		return nil
	}
	return s.logout()
}

func (s *stubSocialAPI) UpdateMe(_ context.Context, patch domain.ProfilePatch) (domain.Identity, error) {
	if s.updateMe == nil {
		return domain.Identity{}, errStubNotConfigured
	}
	return s.updateMe(patch)
}

func (s *stubSocialAPI) GetUser(_ context.Context, userID int64) (domain.UserProfile, error) {
	s.getUserCalls.Add(1)
	if s.getUser == nil {
		return domain.UserProfile{Identity: domain.Identity{ID: userID}}, nil
	}
	return s.getUser(userID)
}

func (s *stubSocialAPI) FollowStatus(_ context.Context, userID int64) (bool, error) {
	s.followStatusCalls.Add(1)
	if s.followStatus == nil {
		return false, nil
	}
	return s.followStatus(userID)
}

func (s *stubSocialAPI) SetFollow(_ context.Context, userID int64, follow bool) (bool, error) {
	if s.setFollow == nil {
		return follow, nil
	}
	return s.setFollow(userID, follow)
}

func (s *stubSocialAPI) FollowingPage(_ context.Context, userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error) {
	s.followingPageCalls.Add(1)
	if s.followingPage == nil {
		return paginate.Page[domain.UserSummary]{}, nil
	}
	return s.followingPage(userID, page, pageSize)
}

func (s *stubSocialAPI) FollowersPage(_ context.Context, userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error) {
	if s.followersPage == nil {
		return paginate.Page[domain.UserSummary]{}, nil
	}
	return s.followersPage(userID, page, pageSize)
}

func (s *stubSocialAPI) ListPosts(_ context.Context, query domain.PostQuery) ([]domain.Post, error) {
	s.listPostsCalls.Add(1)
	if s.listPosts == nil {
		return []domain.Post{}, nil
	}
	return s.listPosts(query)
}

func (s *stubSocialAPI) SearchPosts(_ context.Context, text string, followOnly bool) ([]domain.Post, error) {
	if s.searchPosts == nil {
		return []domain.Post{}, nil
	}
	return s.searchPosts(text, followOnly)
}

func (s *stubSocialAPI) DeletePost(_ context.Context, postID int64) error {
	if s.deletePost == nil {
		return nil
	}
	return s.deletePost(postID)
}

func (s *stubSocialAPI) SetLike(_ context.Context, postID int64, like bool) (domain.LikeResult, error) {
	if s.setLike == nil {
		return domain.LikeResult{Liked: like}, nil
	}
	return s.setLike(postID, like)
}

func (s *stubSocialAPI) LikesPreview(_ context.Context, postID int64, limit int) (domain.LikesPreview, error) {
	s.likesPreviewCalls.Add(1)
	if s.likesPreview == nil {
		return domain.LikesPreview{Users: []domain.UserSummary{}}, nil
	}
	return s.likesPreview(postID, limit)
}

func (s *stubSocialAPI) LikesPage(_ context.Context, postID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error) {
	if s.likesPage == nil {
		return paginate.Page[domain.UserSummary]{}, nil
	}
	return s.likesPage(postID, page, pageSize)
}

func (s *stubSocialAPI) CommentsPage(_ context.Context, postID int64, page, pageSize int) (paginate.Page[domain.Comment], error) {
	s.commentsPageCalls.Add(1)
	if s.commentsPage == nil {
		return paginate.Page[domain.Comment]{}, nil
	}
	return s.commentsPage(postID, page, pageSize)
}

func (s *stubSocialAPI) CreateComment(_ context.Context, postID int64, content string) (domain.Comment, error) {
	if s.createComment == nil {
		return domain.Comment{ID: 1, PostID: postID, Content: content}, nil
	}
	return s.createComment(postID, content)
}

func (s *stubSocialAPI) EditComment(_ context.Context, commentID int64, content string) (domain.Comment, error) {
	if s.editComment == nil {
		return domain.Comment{ID: commentID, Content: content, Edited: true}, nil
	}
	return s.editComment(commentID, content)
}

func (s *stubSocialAPI) DeleteComment(_ context.Context, commentID int64) error {
	if s.deleteComment == nil {
		return nil
	}
	return s.deleteComment(commentID)
}

func (s *stubSocialAPI) CreatePost(_ context.Context, post domain.NewPost) (domain.Post, error) {
	if s.createPost == nil {
		return domain.Post{ID: 1, Content: post.Content, Picture: post.Picture}, nil
	}
	return s.createPost(post)
}

func (s *stubSocialAPI) UploadImage(_ context.Context, image domain.ImageUpload) (string, error) {
	s.uploadCalls.Add(1)
	if s.uploadImage == nil {
		return "/uploads/" + image.Filename, nil
	}
	return s.uploadImage(image)
}

func (s *stubSocialAPI) SearchUsers(_ context.Context, query string, limit int) ([]domain.UserCard, error) {
	if s.searchUsers == nil {
		return []domain.UserCard{}, nil
	}
	return s.searchUsers(query, limit)
}

func (s *stubSocialAPI) UserPosts(_ context.Context, userID int64, page, pageSize int) ([]domain.Post, error) {
	if s.userPosts == nil {
		return []domain.Post{}, nil
	}
	return s.userPosts(userID, page, pageSize)
}

func (s *stubSocialAPI) UserLikedPosts(_ context.Context, userID int64, page, pageSize int) ([]domain.Post, error) {
	if s.userLiked == nil {
		return []domain.Post{}, nil
	}
	return s.userLiked(userID, page, pageSize)
}

func (s *stubSocialAPI) UserComments(_ context.Context, userID int64, page, pageSize int) ([]domain.ProfileComment, error) {
	if s.userComments == nil {
		return []domain.ProfileComment{}, nil
	}
	return s.userComments(userID, page, pageSize)
}

// fakePersistence keeps the serialized session in memory.
type fakePersistence struct {
	mu       sync.Mutex
	session  *domain.Session
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (f *fakePersistence) Load(context.Context) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.session == nil {
		return nil, repository.ErrNotFound
	}
	return f.session.Clone(), nil
}

func (f *fakePersistence) Save(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.session = session.Clone()
	return nil
}

func (f *fakePersistence) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.session = nil
	return f.clearErr
}

func (f *fakePersistence) stored() *domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.Clone()
}

// recordingPublisher captures published activity events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingPublisher) record(event domain.Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) PublishLikeToggled(_ context.Context, e domain.LikeToggledEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) PublishPostDeleted(_ context.Context, e domain.PostDeletedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) PublishCommentChanged(_ context.Context, e domain.CommentChangedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) PublishFollowChanged(_ context.Context, e domain.FollowChangedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) PublishIdentityChanged(_ context.Context, e domain.IdentityChangedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// harness wires a coordinator over stubs the same way the application does.
type harness struct {
	api         *stubSocialAPI
	persistence *fakePersistence
	publisher   *recordingPublisher
	clock       *testClock
	sessions    *SessionStore
	followSet   *FollowSetCache
	coordinator *Coordinator
}

func newHarness(api *stubSocialAPI) *harness {
	clock := newTestClock()
	persistence := &fakePersistence{}
	publisher := &recordingPublisher{}
	sessions := NewSessionStore(persistence)

	followSet := NewFollowSetCache(api, sessions, 30*time.Second).WithNow(clock.Now)
	status := cache.NewGuarded(cache.NewTTL[int64, bool](CacheFollowStatus, 15*time.Second).WithClock(clock.Now))
	previews := cache.NewGuarded(cache.NewTTL[int64, domain.LikesPreview](CacheLikesPreview, 15*time.Second).WithClock(clock.Now))
	threads := cache.NewGuarded(cache.NewTTL[int64, domain.CommentThread](CacheComments, 15*time.Second).WithClock(clock.Now))
	profiles := cache.NewGuarded(cache.NewTTL[int64, domain.UserProfile](CacheUserPreview, 30*time.Second).WithClock(clock.Now))

	coordinator := NewCoordinator(Services{
		API:       api,
		Sessions:  sessions,
		Posts:     NewPostService(api, sessions),
		Likes:     NewLikeService(api, sessions, previews, DefaultLikesPreviewLimit),
		Comments:  NewCommentService(api, sessions, threads),
		Follows:   NewFollowService(api, sessions, followSet, status),
		FollowSet: followSet,
		Users:     NewUserService(api, profiles),
	}, publisher).WithNow(clock.Now)

	return &harness{
		api:         api,
		persistence: persistence,
		publisher:   publisher,
		clock:       clock,
		sessions:    sessions,
		followSet:   followSet,
		coordinator: coordinator,
	}
}

func (h *harness) signIn(id int64, credential string) {
	if err := h.sessions.Set(context.Background(), &domain.Session{
		Credential: credential,
		Identity:   domain.Identity{ID: id, DisplayName: "viewer"},
	}); err != nil {
		panic(err)
	}
}

func followingOf(ids ...int64) func(int64, int, int) (paginate.Page[domain.UserSummary], error) {
	return func(_ int64, page, _ int) (paginate.Page[domain.UserSummary], error) {
		if page > 1 {
			return paginate.Page[domain.UserSummary]{Total: len(ids)}, nil
		}
		items := make([]domain.UserSummary, 0, len(ids))
		for _, id := range ids {
			items = append(items, domain.UserSummary{ID: id})
		}
		return paginate.Page[domain.UserSummary]{Items: items, Total: len(ids)}, nil
	}
}
