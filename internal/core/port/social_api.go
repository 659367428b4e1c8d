package port

import (
	"context"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

// SocialAPI is the typed view of the social backend used by the use cases.
type SocialAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, form domain.Registration) (*domain.Session, error)
	Logout(ctx context.Context) error
	UpdateMe(ctx context.Context, patch domain.ProfilePatch) (domain.Identity, error)

	GetUser(ctx context.Context, userID int64) (domain.UserProfile, error)
	FollowStatus(ctx context.Context, userID int64) (bool, error)
	SetFollow(ctx context.Context, userID int64, follow bool) (bool, error)
	FollowingPage(ctx context.Context, userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error)
	FollowersPage(ctx context.Context, userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error)
	SearchUsers(ctx context.Context, query string, limit int) ([]domain.UserCard, error)
	UserPosts(ctx context.Context, userID int64, page, pageSize int) ([]domain.Post, error)
	UserLikedPosts(ctx context.Context, userID int64, page, pageSize int) ([]domain.Post, error)
	UserComments(ctx context.Context, userID int64, page, pageSize int) ([]domain.ProfileComment, error)

	ListPosts(ctx context.Context, query domain.PostQuery) ([]domain.Post, error)
	SearchPosts(ctx context.Context, text string, followOnly bool) ([]domain.Post, error)
	CreatePost(ctx context.Context, post domain.NewPost) (domain.Post, error)
	UploadImage(ctx context.Context, image domain.ImageUpload) (string, error)
	DeletePost(ctx context.Context, postID int64) error
	SetLike(ctx context.Context, postID int64, like bool) (domain.LikeResult, error)
	LikesPreview(ctx context.Context, postID int64, limit int) (domain.LikesPreview, error)
	LikesPage(ctx context.Context, postID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error)

	CommentsPage(ctx context.Context, postID int64, page, pageSize int) (paginate.Page[domain.Comment], error)
	CreateComment(ctx context.Context, postID int64, content string) (domain.Comment, error)
	EditComment(ctx context.Context, commentID int64, content string) (domain.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}
