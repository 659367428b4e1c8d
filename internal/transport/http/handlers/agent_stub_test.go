package handlers

import (
	"context"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/usecase"
)

// stubAgent implements every handler agent interface. Unset funcs answer
// with zero values.
type stubAgent struct {
	status usecase.SessionStatus

	loginFn    func(email, password string) (*domain.Session, error)
	registerFn func(form domain.Registration) (*domain.Session, error)
	logoutErr  error
	profileFn  func(patch domain.ProfilePatch) (domain.Identity, error)

	loadPostsFn     func(query domain.PostQuery) ([]domain.Post, error)
	followingFeedFn func() ([]domain.Post, error)
	searchFn        func(text string, followOnly bool) ([]domain.Post, error)
	deletePostErr   error
	createPostFn    func(draft domain.NewPost) (domain.Post, error)

	toggleFn       func(postID int64) (domain.Post, error)
	setLikeFn      func(postID int64, like bool) (domain.LikeResult, error)
	likesPreviewFn func(postID int64) (domain.LikesPreview, error)
	likesPopover   domain.Popover
	hiddenLikes    int
	allLikesFn     func(postID int64) (paginate.Listing[domain.UserSummary], error)

	commentsFn      func(postID int64, force bool) (domain.CommentThread, error)
	openCommentsFn  func(postID int64) (domain.CommentThread, error)
	closed          []int64
	panel           domain.Panel
	createCommentFn func(postID int64, content string) (domain.Comment, error)
	editCommentFn   func(postID, commentID int64, content string) (domain.Comment, error)
	deleteCommentFn func(postID, commentID int64) error

	userPreviewFn  func(userID int64) (domain.UserCard, error)
	userPopover    domain.Popover
	hiddenUsers    int
	followStatusFn func(userID int64) (bool, error)
	setFollowFn    func(userID int64, follow bool) (bool, error)
	listingFn      func(userID int64) (paginate.Listing[domain.UserSummary], error)
	countsFn       func(userID int64) (domain.FollowCounts, error)
	followSetFn    func(force bool) (usecase.FollowSet, error)
	searchUsersFn  func(query string) (usecase.UserSearchResult, error)
	userPostsFn    func(userID int64) ([]domain.Post, error)
	userLikesFn    func(userID int64) ([]domain.Post, error)
	userCommentsFn func(userID int64) ([]domain.ProfileComment, error)
}

func (s *stubAgent) SessionStatus() usecase.SessionStatus { return s.status }

func (s *stubAgent) Login(_ context.Context, email, password string) (*domain.Session, error) {
	if s.loginFn == nil {
		return &domain.Session{}, nil
	}
	return s.loginFn(email, password)
}

func (s *stubAgent) Register(_ context.Context, form domain.Registration) (*domain.Session, error) {
	if s.registerFn == nil {
		return &domain.Session{}, nil
	}
	return s.registerFn(form)
}

func (s *stubAgent) Logout(context.Context) error { return s.logoutErr }

func (s *stubAgent) UpdateProfile(_ context.Context, patch domain.ProfilePatch) (domain.Identity, error) {
	if s.profileFn == nil {
		return domain.Identity{}, nil
	}
	return s.profileFn(patch)
}

func (s *stubAgent) LoadPosts(_ context.Context, query domain.PostQuery) ([]domain.Post, error) {
	if s.loadPostsFn == nil {
		return []domain.Post{}, nil
	}
	return s.loadPostsFn(query)
}

func (s *stubAgent) LoadFollowingFeed(context.Context) ([]domain.Post, error) {
	if s.followingFeedFn == nil {
		return []domain.Post{}, nil
	}
	return s.followingFeedFn()
}

func (s *stubAgent) SearchPosts(_ context.Context, text string, followOnly bool) ([]domain.Post, error) {
	if s.searchFn == nil {
		return []domain.Post{}, nil
	}
	return s.searchFn(text, followOnly)
}

func (s *stubAgent) DeletePost(context.Context, int64) error { return s.deletePostErr }

func (s *stubAgent) CreatePost(_ context.Context, draft domain.NewPost) (domain.Post, error) {
	if s.createPostFn == nil {
		return domain.Post{ID: 1, Content: draft.Content}, nil
	}
	return s.createPostFn(draft)
}

func (s *stubAgent) ToggleLike(_ context.Context, postID int64) (domain.Post, error) {
	if s.toggleFn == nil {
		return domain.Post{ID: postID}, nil
	}
	return s.toggleFn(postID)
}

func (s *stubAgent) SetLike(_ context.Context, postID int64, like bool) (domain.LikeResult, error) {
	if s.setLikeFn == nil {
		return domain.LikeResult{Liked: like}, nil
	}
	return s.setLikeFn(postID, like)
}

func (s *stubAgent) ShowLikesPreview(_ context.Context, postID int64) (domain.LikesPreview, error) {
	if s.likesPreviewFn == nil {
		return domain.LikesPreview{}, nil
	}
	return s.likesPreviewFn(postID)
}

func (s *stubAgent) HideLikesPreview() { s.hiddenLikes++ }

func (s *stubAgent) LikesPopover() domain.Popover { return s.likesPopover }

func (s *stubAgent) AllLikes(_ context.Context, postID int64) (paginate.Listing[domain.UserSummary], error) {
	if s.allLikesFn == nil {
		return paginate.Listing[domain.UserSummary]{}, nil
	}
	return s.allLikesFn(postID)
}

func (s *stubAgent) OpenComments(_ context.Context, postID int64) (domain.CommentThread, error) {
	if s.openCommentsFn == nil {
		return domain.CommentThread{PostID: postID}, nil
	}
	return s.openCommentsFn(postID)
}

func (s *stubAgent) LoadComments(_ context.Context, postID int64, force bool) (domain.CommentThread, error) {
	if s.commentsFn == nil {
		return domain.CommentThread{PostID: postID}, nil
	}
	return s.commentsFn(postID, force)
}

func (s *stubAgent) CloseComments(postID int64) { s.closed = append(s.closed, postID) }

func (s *stubAgent) CommentPanel(int64) domain.Panel { return s.panel }

func (s *stubAgent) CreateComment(_ context.Context, postID int64, content string) (domain.Comment, error) {
	if s.createCommentFn == nil {
		return domain.Comment{PostID: postID, Content: content}, nil
	}
	return s.createCommentFn(postID, content)
}

func (s *stubAgent) EditComment(_ context.Context, postID, commentID int64, content string) (domain.Comment, error) {
	if s.editCommentFn == nil {
		return domain.Comment{ID: commentID, PostID: postID, Content: content}, nil
	}
	return s.editCommentFn(postID, commentID, content)
}

func (s *stubAgent) DeleteComment(_ context.Context, postID, commentID int64) error {
	if s.deleteCommentFn == nil {
		return nil
	}
	return s.deleteCommentFn(postID, commentID)
}

func (s *stubAgent) ShowUserPreview(_ context.Context, userID int64) (domain.UserCard, error) {
	if s.userPreviewFn == nil {
		return domain.UserCard{}, nil
	}
	return s.userPreviewFn(userID)
}

func (s *stubAgent) HideUserPreview() { s.hiddenUsers++ }

func (s *stubAgent) UserPopover() domain.Popover { return s.userPopover }

func (s *stubAgent) FollowStatus(_ context.Context, userID int64) (bool, error) {
	if s.followStatusFn == nil {
		return false, nil
	}
	return s.followStatusFn(userID)
}

func (s *stubAgent) SetFollow(_ context.Context, userID int64, follow bool) (bool, error) {
	if s.setFollowFn == nil {
		return follow, nil
	}
	return s.setFollowFn(userID, follow)
}

func (s *stubAgent) Following(_ context.Context, userID int64) (paginate.Listing[domain.UserSummary], error) {
	if s.listingFn == nil {
		return paginate.Listing[domain.UserSummary]{}, nil
	}
	return s.listingFn(userID)
}

func (s *stubAgent) Followers(_ context.Context, userID int64) (paginate.Listing[domain.UserSummary], error) {
	return s.Following(context.Background(), userID)
}

func (s *stubAgent) FollowCounts(_ context.Context, userID int64) (domain.FollowCounts, error) {
	if s.countsFn == nil {
		return domain.FollowCounts{UserID: userID}, nil
	}
	return s.countsFn(userID)
}

func (s *stubAgent) MyFollowSet(_ context.Context, force bool) (usecase.FollowSet, error) {
	if s.followSetFn == nil {
		return usecase.FollowSet{Members: []int64{}}, nil
	}
	return s.followSetFn(force)
}

func (s *stubAgent) SearchUsers(_ context.Context, query string) (usecase.UserSearchResult, error) {
	if s.searchUsersFn == nil {
		return usecase.UserSearchResult{Query: query, Users: []domain.UserCard{}, Posts: []domain.Post{}}, nil
	}
	return s.searchUsersFn(query)
}

func (s *stubAgent) LoadUserPosts(_ context.Context, userID int64) ([]domain.Post, error) {
	if s.userPostsFn == nil {
		return []domain.Post{}, nil
	}
	return s.userPostsFn(userID)
}

func (s *stubAgent) LoadUserLikes(_ context.Context, userID int64) ([]domain.Post, error) {
	if s.userLikesFn == nil {
		return []domain.Post{}, nil
	}
	return s.userLikesFn(userID)
}

func (s *stubAgent) UserComments(_ context.Context, userID int64) ([]domain.ProfileComment, error) {
	if s.userCommentsFn == nil {
		return []domain.ProfileComment{}, nil
	}
	return s.userCommentsFn(userID)
}

var (
	_ SessionAgent = (*stubAgent)(nil)
	_ PostAgent    = (*stubAgent)(nil)
	_ CommentAgent = (*stubAgent)(nil)
	_ UserAgent    = (*stubAgent)(nil)
)
