package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/logger"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

var (
	// ErrPostNotLoaded indicates an action on a post missing from the local listing.
	ErrPostNotLoaded = errors.New("post not in local listing")
	// ErrInvalidCredentials rejects empty login forms before they reach the backend.
	ErrInvalidCredentials = errors.New("email and password are required")
	// ErrInvalidRegistration rejects incomplete sign-up forms.
	ErrInvalidRegistration = errors.New("email, password and display name are required")
	// ErrUnknownEvent is returned by Apply for event types it does not handle.
	ErrUnknownEvent = errors.New("unknown event type")
)

// Services groups the collaborators of the Coordinator.
type Services struct {
	API       port.SocialAPI
	Sessions  *SessionStore
	Posts     *PostService
	Likes     *LikeService
	Comments  *CommentService
	Follows   *FollowService
	FollowSet *FollowSetCache
	Users     *UserService
}

// SessionStatus is the rendering layer's view of the session.
type SessionStatus struct {
	SignedIn  bool             `json:"signedIn"`
	Identity  *domain.Identity `json:"identity,omitempty"`
	Label     string           `json:"label"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
}

// UserSearchResult is a user search with the listing it loaded.
type UserSearchResult struct {
	Query string            `json:"query"`
	Users []domain.UserCard `json:"users"`
	Posts []domain.Post     `json:"posts"`
}

// Coordinator runs viewer actions against the backend and keeps every cache
// and UI-state record consistent afterwards. Actions feed domain events into
// Apply, which owns the invalidation rules.
type Coordinator struct {
	svc     Services
	events  port.EventPublisher
	inspect CredentialInspector
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	likesSeq cache.Sequence
	usersSeq cache.Sequence

	mu            sync.Mutex
	likesPopover  domain.Popover
	userPopover   domain.Popover
	commentPanels *domain.PanelBoard
}

// NewCoordinator wires the coordinator and subscribes it to session changes.
func NewCoordinator(svc Services, events port.EventPublisher) *Coordinator {
	c := &Coordinator{
		svc:           svc,
		events:        events,
		logger:        zap.NewNop(),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
		commentPanels: domain.NewPanelBoard(),
	}
	svc.Sessions.Subscribe(SessionListenerFunc(c.sessionChanged))
	return c
}

// WithLogger attaches a structured logger.
func (c *Coordinator) WithLogger(logger *zap.Logger) *Coordinator {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithNow overrides the clock, primarily for deterministic testing.
func (c *Coordinator) WithNow(now func() time.Time) *Coordinator {
	if now != nil {
		c.now = now
	}
	return c
}

// WithInspector enables credential expiry reporting in SessionStatus.
func (c *Coordinator) WithInspector(inspect CredentialInspector) *Coordinator {
	c.inspect = inspect
	return c
}

// Apply enforces the cache and UI-state rules for event and publishes it.
// Comment changes end with a forced reload of the thread; its failure is
// the only error Apply reports for a known event.
func (c *Coordinator) Apply(ctx context.Context, event domain.Event) error {
	switch e := event.(type) {
	case domain.LikeToggledEvent:
		c.applyLikeToggled(e)
	case domain.PostDeletedEvent:
		c.applyPostDeleted(e)
	case domain.CommentChangedEvent:
		c.svc.Comments.Invalidate(e.PostID)
	case domain.FollowChangedEvent:
		c.svc.Follows.ApplyFollowState(e.TargetID, e.Followed)
	case domain.IdentityChangedEvent:
		c.svc.FollowSet.Reset()
		c.usersSeq.Supersede()
		c.mu.Lock()
		c.userPopover.Hide()
		c.mu.Unlock()
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, event)
	}

	c.logger.Debug("applied event", zap.String("event_type", event.EventType()))
	c.publish(ctx, event)

	if e, ok := event.(domain.CommentChangedEvent); ok {
		if _, err := c.LoadComments(ctx, e.PostID, true); err != nil {
			return fmt.Errorf("reload comments %d: %w", e.PostID, err)
		}
	}
	return nil
}

func (c *Coordinator) applyLikeToggled(e domain.LikeToggledEvent) {
	c.svc.Posts.Patch(e.PostID, func(p *domain.Post) {
		p.LikedByMe = e.Liked
		if e.Likes >= 0 {
			p.Likes = e.Likes
		}
	})
	c.svc.Likes.Invalidate(e.PostID)

	c.mu.Lock()
	closed := c.likesPopover.HideIf(e.PostID)
	c.mu.Unlock()
	if closed {
		c.likesSeq.Supersede()
	}
}

func (c *Coordinator) applyPostDeleted(e domain.PostDeletedEvent) {
	c.svc.Posts.Remove(e.PostID)
	c.svc.Likes.Invalidate(e.PostID)
	c.svc.Comments.Invalidate(e.PostID)

	c.mu.Lock()
	c.commentPanels.Forget(e.PostID)
	closed := c.likesPopover.HideIf(e.PostID)
	c.mu.Unlock()
	if closed {
		c.likesSeq.Supersede()
	}
}

func (c *Coordinator) sessionChanged(ctx context.Context, change domain.SessionChange) {
	if !change.IdentityChanged {
		c.svc.FollowSet.Invalidate()
		return
	}
	event := domain.IdentityChangedEvent{
		EventID:    c.newID(),
		PreviousID: change.Previous.IdentityID(),
		CurrentID:  change.Current.IdentityID(),
		ChangedAt:  c.now(),
	}
	if err := c.Apply(ctx, event); err != nil {
		c.logger.Warn("failed to apply identity change", zap.Error(err))
	}
}

func (c *Coordinator) publish(ctx context.Context, event domain.Event) {
	if c.events == nil {
		return
	}

	var err error
	switch e := event.(type) {
	case domain.LikeToggledEvent:
		err = c.events.PublishLikeToggled(ctx, e)
	case domain.PostDeletedEvent:
		err = c.events.PublishPostDeleted(ctx, e)
	case domain.CommentChangedEvent:
		err = c.events.PublishCommentChanged(ctx, e)
	case domain.FollowChangedEvent:
		err = c.events.PublishFollowChanged(ctx, e)
	case domain.IdentityChangedEvent:
		err = c.events.PublishIdentityChanged(ctx, e)
	}
	if err != nil {
		c.logger.Warn("failed to publish activity event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

// Session

// Login signs the viewer in and replaces the session.
func (c *Coordinator) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	session, err := c.svc.API.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := c.svc.Sessions.Set(ctx, session); err != nil {
		return nil, err
	}
	c.logger.Info("viewer signed in",
		zap.Int64("identity_id", session.IdentityID()),
		zap.String("email", logger.MaskEmail(email)),
	)
	return session.Clone(), nil
}

// Register creates an account and signs the viewer in.
func (c *Coordinator) Register(ctx context.Context, form domain.Registration) (*domain.Session, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.DisplayName = strings.TrimSpace(form.DisplayName)
	if form.Email == "" || form.Password == "" || form.DisplayName == "" {
		return nil, ErrInvalidRegistration
	}
	session, err := c.svc.API.Register(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := c.svc.Sessions.Set(ctx, session); err != nil {
		return nil, err
	}
	c.logger.Info("viewer registered", zap.Int64("identity_id", session.IdentityID()))
	return session.Clone(), nil
}

// Logout signs out. A failed backend logout still destroys the local session.
func (c *Coordinator) Logout(ctx context.Context) error {
	if err := c.svc.API.Logout(ctx); err != nil {
		c.logger.Info("backend logout failed, clearing local session anyway", zap.Error(err))
	}
	return c.svc.Sessions.Set(ctx, nil)
}

// UpdateProfile edits the viewer's profile and stores the returned identity.
func (c *Coordinator) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.Identity, error) {
	me := c.svc.Sessions.IdentityID()
	if me == 0 {
		return domain.Identity{}, ErrNotAuthenticated
	}
	identity, err := c.svc.API.UpdateMe(ctx, patch)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("update profile: %w", err)
	}
	if identity.ID == 0 {
		identity.ID = me
	}
	if err := c.svc.Sessions.UpdateIdentity(ctx, identity); err != nil {
		return domain.Identity{}, err
	}
	c.svc.Users.Invalidate(me)
	return identity, nil
}

// SessionStatus describes the current session without touching the network.
func (c *Coordinator) SessionStatus() SessionStatus {
	session := c.svc.Sessions.Get()
	if session == nil {
		return SessionStatus{Label: "signed out"}
	}
	identity := session.Identity
	status := SessionStatus{SignedIn: true, Identity: &identity, Label: identity.Label()}
	if c.inspect != nil {
		if claims, err := c.inspect(session.Credential); err == nil && !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			status.ExpiresAt = &exp
		}
	}
	return status
}

// Posts

// LoadPosts reloads the listing and drops every cached likes preview.
func (c *Coordinator) LoadPosts(ctx context.Context, query domain.PostQuery) ([]domain.Post, error) {
	posts, err := c.svc.Posts.Load(ctx, query)
	if err != nil {
		return nil, err
	}
	c.svc.Likes.Clear()
	return posts, nil
}

// LoadFollowingFeed loads posts by the users the viewer follows.
func (c *Coordinator) LoadFollowingFeed(ctx context.Context) ([]domain.Post, error) {
	set, err := c.svc.FollowSet.Ensure(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(set.Members) == 0 {
		return []domain.Post{}, nil
	}
	return c.LoadPosts(ctx, domain.PostQuery{AuthorIDs: set.Members})
}

// SearchPosts runs a guarded post search.
func (c *Coordinator) SearchPosts(ctx context.Context, text string, followOnly bool) ([]domain.Post, error) {
	return c.svc.Posts.Search(ctx, text, followOnly)
}

// CreatePost publishes draft and reloads the listing, which drops every
// cached likes preview. A failed reload is logged; the post exists either way.
func (c *Coordinator) CreatePost(ctx context.Context, draft domain.NewPost) (domain.Post, error) {
	post, err := c.svc.Posts.Create(ctx, draft)
	if err != nil {
		return domain.Post{}, err
	}
	c.logger.Info("post created", zap.Int64("post_id", post.ID), zap.Bool("picture", post.Picture != ""))

	if _, err := c.LoadPosts(ctx, domain.PostQuery{}); err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.Warn("listing reload after post creation failed",
			zap.Int64("post_id", post.ID),
			zap.Error(err),
		)
	}
	return post, nil
}

// LoadUserPosts replaces the listing with the posts of userID.
func (c *Coordinator) LoadUserPosts(ctx context.Context, userID int64) ([]domain.Post, error) {
	posts, err := c.svc.Posts.LoadAuthored(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.svc.Likes.Clear()
	return posts, nil
}

// LoadUserLikes replaces the listing with the posts userID liked.
func (c *Coordinator) LoadUserLikes(ctx context.Context, userID int64) ([]domain.Post, error) {
	posts, err := c.svc.Posts.LoadLiked(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.svc.Likes.Clear()
	return posts, nil
}

// UserComments lists the comments userID left. The listing is untouched.
func (c *Coordinator) UserComments(ctx context.Context, userID int64) ([]domain.ProfileComment, error) {
	return c.svc.Comments.ByUser(ctx, userID)
}

// DeletePost deletes postID and forgets everything cached about it.
func (c *Coordinator) DeletePost(ctx context.Context, postID int64) error {
	if err := c.svc.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	return c.Apply(ctx, domain.PostDeletedEvent{
		EventID:   c.newID(),
		PostID:    postID,
		ActorID:   c.svc.Sessions.IdentityID(),
		DeletedAt: c.now(),
	})
}

// Likes

// ToggleLike flips the viewer's like on a post from the local listing.
func (c *Coordinator) ToggleLike(ctx context.Context, postID int64) (domain.Post, error) {
	post, ok := c.svc.Posts.Get(postID)
	if !ok {
		return domain.Post{}, ErrPostNotLoaded
	}
	if _, err := c.SetLike(ctx, postID, !post.LikedByMe); err != nil {
		return domain.Post{}, err
	}
	post, _ = c.svc.Posts.Get(postID)
	return post, nil
}

// SetLike likes or unlikes postID and patches the local post from the answer.
func (c *Coordinator) SetLike(ctx context.Context, postID int64, like bool) (domain.LikeResult, error) {
	res, err := c.svc.Likes.SetLike(ctx, postID, like)
	if err != nil {
		return domain.LikeResult{}, err
	}

	likes := -1
	if res.Likes != nil {
		likes = *res.Likes
	} else if post, ok := c.svc.Posts.Get(postID); ok {
		likes = post.Likes
	}

	err = c.Apply(ctx, domain.LikeToggledEvent{
		EventID:   c.newID(),
		PostID:    postID,
		ActorID:   c.svc.Sessions.IdentityID(),
		Liked:     res.Liked,
		Likes:     likes,
		ToggledAt: c.now(),
	})
	return res, err
}

// ShowLikesPreview points the likes popover at postID and loads its preview.
// A load overtaken by another Show or a Hide returns ErrSuperseded.
func (c *Coordinator) ShowLikesPreview(ctx context.Context, postID int64) (domain.LikesPreview, error) {
	if postID <= 0 {
		return domain.LikesPreview{}, ErrInvalidID
	}
	ticket := c.likesSeq.Begin()
	c.mu.Lock()
	c.likesPopover.Show(postID)
	c.mu.Unlock()

	preview, err := c.svc.Likes.Preview(ctx, postID)
	if !c.likesSeq.Current(ticket) {
		return domain.LikesPreview{}, ErrSuperseded
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.likesPopover.FailFor(postID, err)
		return domain.LikesPreview{}, err
	}
	c.likesPopover.ResolveFor(postID)
	return preview, nil
}

// HideLikesPreview closes the likes popover and drops its pending load.
func (c *Coordinator) HideLikesPreview() {
	c.likesSeq.Supersede()
	c.mu.Lock()
	c.likesPopover.Hide()
	c.mu.Unlock()
}

// LikesPopover returns the likes popover record.
func (c *Coordinator) LikesPopover() domain.Popover {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.likesPopover
}

// AllLikes collects every user who liked postID.
func (c *Coordinator) AllLikes(ctx context.Context, postID int64) (paginate.Listing[domain.UserSummary], error) {
	return c.svc.Likes.All(ctx, postID)
}

// Comments

// OpenComments opens the comment panel of postID and loads its thread.
func (c *Coordinator) OpenComments(ctx context.Context, postID int64) (domain.CommentThread, error) {
	if postID <= 0 {
		return domain.CommentThread{}, ErrInvalidID
	}
	c.mu.Lock()
	c.commentPanels.Update(postID, (*domain.Panel).Begin)
	c.mu.Unlock()
	return c.loadThread(ctx, postID, false)
}

// LoadComments loads the thread of postID and refreshes the post's comment
// count. An open panel goes through loading again.
func (c *Coordinator) LoadComments(ctx context.Context, postID int64, force bool) (domain.CommentThread, error) {
	if postID <= 0 {
		return domain.CommentThread{}, ErrInvalidID
	}
	c.mu.Lock()
	if c.commentPanels.Get(postID).Visible() {
		c.commentPanels.Update(postID, (*domain.Panel).Begin)
	}
	c.mu.Unlock()
	return c.loadThread(ctx, postID, force)
}

func (c *Coordinator) loadThread(ctx context.Context, postID int64, force bool) (domain.CommentThread, error) {
	thread, err := c.svc.Comments.Thread(ctx, postID, force)

	c.mu.Lock()
	if c.commentPanels.Get(postID).Visible() {
		c.commentPanels.Update(postID, func(p *domain.Panel) {
			if err != nil {
				p.Fail(err)
				return
			}
			p.Resolve()
		})
	}
	c.mu.Unlock()

	if err != nil {
		return domain.CommentThread{}, err
	}
	c.svc.Posts.Patch(postID, func(p *domain.Post) { p.CommentCount = thread.Total })
	return thread, nil
}

// CloseComments closes the comment panel of postID. A load still in flight
// completes into the cache but no longer touches the panel.
func (c *Coordinator) CloseComments(postID int64) {
	c.mu.Lock()
	c.commentPanels.Update(postID, (*domain.Panel).Close)
	c.mu.Unlock()
}

// CommentPanel returns the panel record of postID.
func (c *Coordinator) CommentPanel(postID int64) domain.Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commentPanels.Get(postID)
}

// CreateComment posts a comment and reloads the thread.
func (c *Coordinator) CreateComment(ctx context.Context, postID int64, content string) (domain.Comment, error) {
	comment, err := c.svc.Comments.Create(ctx, postID, content)
	if err != nil {
		return domain.Comment{}, err
	}
	c.commentChanged(ctx, postID, comment.ID, domain.CommentCreated)
	return comment, nil
}

// EditComment edits a comment of postID and reloads the thread.
func (c *Coordinator) EditComment(ctx context.Context, postID, commentID int64, content string) (domain.Comment, error) {
	comment, err := c.svc.Comments.Edit(ctx, commentID, content)
	if err != nil {
		return domain.Comment{}, err
	}
	if postID <= 0 {
		postID = comment.PostID
	}
	c.commentChanged(ctx, postID, commentID, domain.CommentEdited)
	return comment, nil
}

// DeleteComment deletes a comment of postID and reloads the thread.
func (c *Coordinator) DeleteComment(ctx context.Context, postID, commentID int64) error {
	if postID <= 0 {
		return ErrInvalidID
	}
	if err := c.svc.Comments.Delete(ctx, commentID); err != nil {
		return err
	}
	c.commentChanged(ctx, postID, commentID, domain.CommentDeleted)
	return nil
}

func (c *Coordinator) commentChanged(ctx context.Context, postID, commentID int64, kind domain.CommentChangeKind) {
	err := c.Apply(ctx, domain.CommentChangedEvent{
		EventID:   c.newID(),
		PostID:    postID,
		CommentID: commentID,
		ActorID:   c.svc.Sessions.IdentityID(),
		Kind:      kind,
		ChangedAt: c.now(),
	})
	if err != nil {
		c.logger.Warn("comment reload after change failed",
			zap.Int64("post_id", postID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// Users and follows

// ShowUserPreview points the user popover at userID and loads the profile and
// follow status together.
func (c *Coordinator) ShowUserPreview(ctx context.Context, userID int64) (domain.UserCard, error) {
	if userID <= 0 {
		return domain.UserCard{}, ErrInvalidID
	}
	ticket := c.usersSeq.Begin()
	c.mu.Lock()
	c.userPopover.Show(userID)
	c.mu.Unlock()

	me := c.svc.Sessions.IdentityID()
	card := domain.UserCard{ShowFollowButton: me != 0 && me != userID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := c.svc.Users.Profile(gctx, userID)
		card.Profile = profile
		return err
	})
	if card.ShowFollowButton {
		g.Go(func() error {
			followed, err := c.svc.Follows.Status(gctx, userID)
			card.FollowedByMe = followed
			return err
		})
	}
	err := g.Wait()

	if !c.usersSeq.Current(ticket) {
		return domain.UserCard{}, ErrSuperseded
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.userPopover.FailFor(userID, err)
		return domain.UserCard{}, err
	}
	c.userPopover.ResolveFor(userID)
	return card, nil
}

// SearchUsers finds users and points the listing at their posts. No hits
// empties the listing and a blank query restores the full feed. A search
// overtaken by a newer one returns ErrSuperseded.
func (c *Coordinator) SearchUsers(ctx context.Context, query string) (UserSearchResult, error) {
	query = strings.TrimSpace(query)
	users, err := c.svc.Users.Search(ctx, query)
	if err != nil {
		return UserSearchResult{}, err
	}

	me := c.svc.Sessions.IdentityID()
	ids := make([]int64, 0, len(users))
	for i := range users {
		id := users[i].Profile.ID
		users[i].ShowFollowButton = me != 0 && me != id
		ids = append(ids, id)
	}
	result := UserSearchResult{Query: query, Users: users}

	switch {
	case query == "":
		result.Posts, err = c.LoadPosts(ctx, domain.PostQuery{})
	case len(ids) == 0:
		c.svc.Posts.Clear()
		c.svc.Likes.Clear()
		result.Posts = []domain.Post{}
	default:
		result.Posts, err = c.LoadPosts(ctx, domain.PostQuery{AuthorIDs: ids})
	}
	if err != nil {
		return UserSearchResult{}, err
	}
	return result, nil
}

// HideUserPreview closes the user popover and drops its pending load.
func (c *Coordinator) HideUserPreview() {
	c.usersSeq.Supersede()
	c.mu.Lock()
	c.userPopover.Hide()
	c.mu.Unlock()
}

// UserPopover returns the user popover record.
func (c *Coordinator) UserPopover() domain.Popover {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userPopover
}

// FollowStatus reports whether the viewer follows userID.
func (c *Coordinator) FollowStatus(ctx context.Context, userID int64) (bool, error) {
	return c.svc.Follows.Status(ctx, userID)
}

// SetFollow follows or unfollows userID and propagates the server's answer
// to every surface showing the pair.
func (c *Coordinator) SetFollow(ctx context.Context, userID int64, follow bool) (bool, error) {
	followed, err := c.svc.Follows.SetFollow(ctx, userID, follow)
	if err != nil {
		return false, err
	}
	err = c.Apply(ctx, domain.FollowChangedEvent{
		EventID:   c.newID(),
		ActorID:   c.svc.Sessions.IdentityID(),
		TargetID:  userID,
		Followed:  followed,
		ChangedAt: c.now(),
	})
	return followed, err
}

// OnFollowState registers a listener for follow-state changes.
func (c *Coordinator) OnFollowState(listener FollowStateListener) {
	c.svc.Follows.OnFollowState(listener)
}

// Following collects every user userID follows.
func (c *Coordinator) Following(ctx context.Context, userID int64) (paginate.Listing[domain.UserSummary], error) {
	return c.svc.Follows.Following(ctx, userID)
}

// Followers collects every follower of userID.
func (c *Coordinator) Followers(ctx context.Context, userID int64) (paginate.Listing[domain.UserSummary], error) {
	return c.svc.Follows.Followers(ctx, userID)
}

// FollowCounts reads follower and following totals of userID.
func (c *Coordinator) FollowCounts(ctx context.Context, userID int64) (domain.FollowCounts, error) {
	return c.svc.Follows.Counts(ctx, userID)
}

// MyFollowSet returns the viewer's follow set.
func (c *Coordinator) MyFollowSet(ctx context.Context, force bool) (FollowSet, error) {
	return c.svc.FollowSet.Ensure(ctx, force)
}
