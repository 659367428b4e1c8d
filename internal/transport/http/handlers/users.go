package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/usecase"
)

// UserAgent is the profile and follow surface of the coordinator.
type UserAgent interface {
	ShowUserPreview(ctx context.Context, userID int64) (domain.UserCard, error)
	HideUserPreview()
	UserPopover() domain.Popover
	FollowStatus(ctx context.Context, userID int64) (bool, error)
	SetFollow(ctx context.Context, userID int64, follow bool) (bool, error)
	Following(ctx context.Context, userID int64) (paginate.Listing[domain.UserSummary], error)
	Followers(ctx context.Context, userID int64) (paginate.Listing[domain.UserSummary], error)
	FollowCounts(ctx context.Context, userID int64) (domain.FollowCounts, error)
	MyFollowSet(ctx context.Context, force bool) (usecase.FollowSet, error)

	SearchUsers(ctx context.Context, query string) (usecase.UserSearchResult, error)
	LoadUserPosts(ctx context.Context, userID int64) ([]domain.Post, error)
	LoadUserLikes(ctx context.Context, userID int64) ([]domain.Post, error)
	UserComments(ctx context.Context, userID int64) ([]domain.ProfileComment, error)
}

// UserHandler exposes hover cards, follow toggles and follow listings.
type UserHandler struct {
	agent UserAgent
}

// NewUserHandler constructs a user handler.
func NewUserHandler(agent UserAgent) *UserHandler {
	return &UserHandler{agent: agent}
}

// RegisterRoutes binds /users routes to users and /me routes to me.
func (h *UserHandler) RegisterRoutes(users, me *gin.RouterGroup) {
	if users != nil {
		users.GET("/search", h.Search)
		users.GET("/:id/posts", h.Posts)
		users.GET("/:id/likes", h.Likes)
		users.GET("/:id/comments", h.Comments)
		users.GET("/:id/preview", h.ShowPreview)
		users.DELETE("/:id/preview", h.HidePreview)
		users.GET("/:id/follow", h.FollowStatus)
		users.POST("/:id/follow", h.Follow)
		users.DELETE("/:id/follow", h.Unfollow)
		users.GET("/:id/following", h.Following)
		users.GET("/:id/followers", h.Followers)
		users.GET("/:id/counts", h.Counts)
	}
	if me != nil {
		me.GET("/following", h.MyFollowing)
	}
}

// ShowPreview opens the user popover and loads the hover card.
func (h *UserHandler) ShowPreview(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	card, err := h.agent.ShowUserPreview(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load user preview")
		return
	}
	c.JSON(http.StatusOK, UserPreviewResponse{Card: card, Popover: h.agent.UserPopover()})
}

// HidePreview closes the user popover.
func (h *UserHandler) HidePreview(c *gin.Context) {
	if _, ok := idParam(c, "id"); !ok {
		return
	}
	h.agent.HideUserPreview()
	c.Status(http.StatusNoContent)
}

// FollowStatus reports whether the viewer follows a user.
func (h *UserHandler) FollowStatus(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	followed, err := h.agent.FollowStatus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load follow status")
		return
	}
	c.JSON(http.StatusOK, FollowResponse{UserID: userID, Followed: followed})
}

// Follow follows a user.
func (h *UserHandler) Follow(c *gin.Context) {
	h.setFollow(c, true)
}

// Unfollow unfollows a user.
func (h *UserHandler) Unfollow(c *gin.Context) {
	h.setFollow(c, false)
}

func (h *UserHandler) setFollow(c *gin.Context, follow bool) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	followed, err := h.agent.SetFollow(c.Request.Context(), userID, follow)
	if err != nil {
		respondError(c, err, "failed to update follow")
		return
	}
	c.JSON(http.StatusOK, FollowResponse{UserID: userID, Followed: followed})
}

// Following lists every user a user follows.
func (h *UserHandler) Following(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	listing, err := h.agent.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load following")
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Followers lists every follower of a user.
func (h *UserHandler) Followers(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	listing, err := h.agent.Followers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load followers")
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Counts returns follower and following totals.
func (h *UserHandler) Counts(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	counts, err := h.agent.FollowCounts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load follow counts")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// MyFollowing returns the viewer's follow set; force=true reloads it.
func (h *UserHandler) MyFollowing(c *gin.Context) {
	set, err := h.agent.MyFollowSet(c.Request.Context(), boolQuery(c, "force"))
	if err != nil {
		respondError(c, err, "failed to load follow set")
		return
	}
	c.JSON(http.StatusOK, set)
}

// Search finds users and loads their posts into the listing. A search
// overtaken by a newer one answers 409.
func (h *UserHandler) Search(c *gin.Context) {
	result, err := h.agent.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "failed to search users")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Posts switches the listing to the posts tab of a profile.
func (h *UserHandler) Posts(c *gin.Context) {
	h.profileTab(c, h.agent.LoadUserPosts, "failed to load user posts")
}

// Likes switches the listing to the liked-posts tab of a profile.
func (h *UserHandler) Likes(c *gin.Context) {
	h.profileTab(c, h.agent.LoadUserLikes, "failed to load liked posts")
}

func (h *UserHandler) profileTab(c *gin.Context, load func(context.Context, int64) ([]domain.Post, error), failure string) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	posts, err := load(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, PostsResponse{Items: posts})
}

// Comments lists the comments a user left.
func (h *UserHandler) Comments(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.agent.UserComments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load user comments")
		return
	}
	c.JSON(http.StatusOK, ProfileCommentsResponse{Items: comments})
}
