package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

// maxImageBytes bounds an image attached to a new post.
const maxImageBytes = 8 << 20

// PostAgent is the post, like and comment-thread surface of the coordinator.
type PostAgent interface {
	LoadPosts(ctx context.Context, query domain.PostQuery) ([]domain.Post, error)
	LoadFollowingFeed(ctx context.Context) ([]domain.Post, error)
	SearchPosts(ctx context.Context, text string, followOnly bool) ([]domain.Post, error)
	CreatePost(ctx context.Context, draft domain.NewPost) (domain.Post, error)
	DeletePost(ctx context.Context, postID int64) error

	ToggleLike(ctx context.Context, postID int64) (domain.Post, error)
	SetLike(ctx context.Context, postID int64, like bool) (domain.LikeResult, error)
	ShowLikesPreview(ctx context.Context, postID int64) (domain.LikesPreview, error)
	HideLikesPreview()
	LikesPopover() domain.Popover
	AllLikes(ctx context.Context, postID int64) (paginate.Listing[domain.UserSummary], error)

	OpenComments(ctx context.Context, postID int64) (domain.CommentThread, error)
	LoadComments(ctx context.Context, postID int64, force bool) (domain.CommentThread, error)
	CloseComments(postID int64)
	CommentPanel(postID int64) domain.Panel
	CreateComment(ctx context.Context, postID int64, content string) (domain.Comment, error)
}

// PostHandler exposes the feed, likes and per-post comment threads.
type PostHandler struct {
	agent PostAgent
}

// NewPostHandler constructs a post handler.
func NewPostHandler(agent PostAgent) *PostHandler {
	return &PostHandler{agent: agent}
}

// RegisterRoutes binds post routes to r.
func (h *PostHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/search", h.Search)
	r.DELETE("/:id", h.Delete)

	r.POST("/:id/like", h.Like)
	r.GET("/:id/likes", h.Likes)
	r.GET("/:id/likes/preview", h.ShowLikesPreview)
	r.DELETE("/:id/likes/preview", h.HideLikesPreview)

	r.GET("/:id/comments", h.Comments)
	r.POST("/:id/comments", h.CreateComment)
	r.PUT("/:id/comments/panel", h.OpenComments)
	r.DELETE("/:id/comments/panel", h.CloseComments)
}

// List godoc
// @Summary Load the feed
// @Description Reloads the local listing. feed=following restricts it to followed authors.
// @Tags Posts
// @Produce json
// @Param feed query string false "following"
// @Param authors query string false "comma separated author ids"
// @Success 200 {object} PostsResponse
// @Router /v1/posts [get]
func (h *PostHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("feed") == "following" {
		posts, err := h.agent.LoadFollowingFeed(ctx)
		if err != nil {
			respondError(c, err, "failed to load feed")
			return
		}
		c.JSON(http.StatusOK, PostsResponse{Items: posts})
		return
	}

	query, err := postQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}
	posts, err := h.agent.LoadPosts(ctx, query)
	if err != nil {
		respondError(c, err, "failed to load posts")
		return
	}
	c.JSON(http.StatusOK, PostsResponse{Items: posts})
}

func postQuery(c *gin.Context) (domain.PostQuery, error) {
	var query domain.PostQuery
	if raw := strings.TrimSpace(c.Query("authors")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				return domain.PostQuery{}, errors.New("invalid authors")
			}
			query.AuthorIDs = append(query.AuthorIDs, id)
		}
	}
	for name, dst := range map[string]*int{"page": &query.Page, "pageSize": &query.PageSize} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return domain.PostQuery{}, errors.New("invalid " + name)
		}
		*dst = n
	}
	return query, nil
}

// Search runs a post search. A search overtaken by a newer one answers 409.
func (h *PostHandler) Search(c *gin.Context) {
	posts, err := h.agent.SearchPosts(c.Request.Context(), c.Query("q"), boolQuery(c, "followOnly"))
	if err != nil {
		respondError(c, err, "failed to search posts")
		return
	}
	c.JSON(http.StatusOK, PostsResponse{Items: posts})
}

// Create godoc
// @Summary Publish a post
// @Description Accepts JSON or a multipart form with an optional image in the "file" part. The listing reloads afterwards.
// @Tags Posts
// @Accept json,mpfd
// @Produce json
// @Param content formData string true "post body"
// @Param file formData file false "png, jpg, jpeg, gif or webp image"
// @Success 201 {object} domain.Post
// @Router /v1/posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	draft, status, err := postDraft(c)
	if err != nil {
		c.JSON(status, NewErrorResponse(c, err.Error()))
		return
	}
	post, err := h.agent.CreatePost(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

func postDraft(c *gin.Context) (domain.NewPost, int, error) {
	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		return domain.NewPost{}, http.StatusBadRequest, errors.New("invalid post payload")
	}
	draft := domain.NewPost{Content: req.Content, Picture: req.Picture}
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return draft, 0, nil
	}

	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, 0, nil
	}
	if err != nil {
		return domain.NewPost{}, http.StatusBadRequest, errors.New("invalid image part")
	}
	if header.Size > maxImageBytes {
		return domain.NewPost{}, http.StatusRequestEntityTooLarge, errors.New("image too large")
	}

	file, err := header.Open()
	if err != nil {
		return domain.NewPost{}, http.StatusBadRequest, errors.New("invalid image part")
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		return domain.NewPost{}, http.StatusBadRequest, errors.New("invalid image part")
	}

	draft.Image = &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return draft, 0, nil
}

// Delete deletes a post.
func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.agent.DeletePost(c.Request.Context(), postID); err != nil {
		respondError(c, err, "failed to delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

// Like flips the viewer's like, or sets it when the body pins "liked".
func (h *PostHandler) Like(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid like payload"))
		return
	}

	ctx := c.Request.Context()
	if req.Liked == nil {
		post, err := h.agent.ToggleLike(ctx, postID)
		if err != nil {
			respondError(c, err, "failed to toggle like")
			return
		}
		likes := post.Likes
		c.JSON(http.StatusOK, LikeResponse{Liked: post.LikedByMe, Likes: &likes, Post: &post})
		return
	}

	res, err := h.agent.SetLike(ctx, postID, *req.Liked)
	if err != nil {
		respondError(c, err, "failed to update like")
		return
	}
	c.JSON(http.StatusOK, LikeResponse{Liked: res.Liked, Likes: res.Likes})
}

// Likes lists every user who liked a post.
func (h *PostHandler) Likes(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	listing, err := h.agent.AllLikes(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err, "failed to load likes")
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ShowLikesPreview opens the likes popover on a post.
func (h *PostHandler) ShowLikesPreview(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	preview, err := h.agent.ShowLikesPreview(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err, "failed to load likes preview")
		return
	}
	c.JSON(http.StatusOK, LikesPreviewResponse{Preview: preview, Popover: h.agent.LikesPopover()})
}

// HideLikesPreview closes the likes popover.
func (h *PostHandler) HideLikesPreview(c *gin.Context) {
	if _, ok := idParam(c, "id"); !ok {
		return
	}
	h.agent.HideLikesPreview()
	c.Status(http.StatusNoContent)
}

// Comments returns the thread of a post; force=true skips the cache.
func (h *PostHandler) Comments(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	thread, err := h.agent.LoadComments(c.Request.Context(), postID, boolQuery(c, "force"))
	if err != nil {
		respondError(c, err, "failed to load comments")
		return
	}
	c.JSON(http.StatusOK, CommentsResponse{Thread: thread, Panel: h.agent.CommentPanel(postID)})
}

// CreateComment adds a comment to a post.
func (h *PostHandler) CreateComment(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid comment payload"))
		return
	}
	comment, err := h.agent.CreateComment(c.Request.Context(), postID, req.Content)
	if err != nil {
		respondError(c, err, "failed to create comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// OpenComments opens the comment panel of a post and loads its thread.
func (h *PostHandler) OpenComments(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	thread, err := h.agent.OpenComments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err, "failed to load comments")
		return
	}
	c.JSON(http.StatusOK, CommentsResponse{Thread: thread, Panel: h.agent.CommentPanel(postID)})
}

// CloseComments closes the comment panel of a post.
func (h *PostHandler) CloseComments(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	h.agent.CloseComments(postID)
	c.Status(http.StatusNoContent)
}
