package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

const (
	authPrefix     = "/api/v1/auth"
	usersPrefix    = "/api/v1/users"
	postsPrefix    = "/api/v1/posts"
	commentsPrefix = "/api/v1/comments"
	followsPrefix  = "/api/v1/follows"
	uploadPath     = "/api/upload"
	uploadField    = "file"

	// feedPageSize matches the single-page feed and search requests.
	feedPageSize = 50
)

// Social maps the backend REST endpoints onto domain types.
type Social struct {
	requester port.Requester
}

var _ port.SocialAPI = (*Social)(nil)

// NewSocial wraps a requester, normally *Client.
func NewSocial(requester port.Requester) *Social {
	return &Social{requester: requester}
}

func (s *Social) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp authDTO
	body := map[string]string{"email": email, "password": password}
	if err := s.requester.Do(ctx, http.MethodPost, authPrefix+"/login", body, &resp); err != nil {
		return nil, err
	}
	return sessionFrom(resp)
}

func (s *Social) Register(ctx context.Context, form domain.Registration) (*domain.Session, error) {
	var resp authDTO
	body := map[string]string{
		"email":    form.Email,
		"password": form.Password,
		"userName": form.DisplayName,
	}
	if err := s.requester.Do(ctx, http.MethodPost, authPrefix+"/register", body, &resp); err != nil {
		return nil, err
	}
	return sessionFrom(resp)
}

func (s *Social) Logout(ctx context.Context) error {
	return s.requester.Do(ctx, http.MethodPost, authPrefix+"/logout", nil, nil)
}

func (s *Social) UpdateMe(ctx context.Context, patch domain.ProfilePatch) (domain.Identity, error) {
	var resp userDTO
	body := profilePatchDTO{
		UserName:   patch.DisplayName,
		Bio:        patch.Bio,
		ProfilePic: patch.AvatarURL,
	}
	if err := s.requester.Do(ctx, http.MethodPatch, usersPrefix+"/me", body, &resp); err != nil {
		return domain.Identity{}, err
	}
	return resp.identity(), nil
}

func (s *Social) GetUser(ctx context.Context, userID int64) (domain.UserProfile, error) {
	var resp userDTO
	if err := s.requester.Do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", usersPrefix, userID), nil, &resp); err != nil {
		return domain.UserProfile{}, err
	}
	return resp.profile(), nil
}

func (s *Social) FollowStatus(ctx context.Context, userID int64) (bool, error) {
	var resp followStatusDTO
	if err := s.requester.Do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", followsPrefix, userID), nil, &resp); err != nil {
		return false, err
	}
	return resp.FollowedByMe, nil
}

func (s *Social) SetFollow(ctx context.Context, userID int64, follow bool) (bool, error) {
	method := http.MethodDelete
	if follow {
		method = http.MethodPost
	}
	var resp followResultDTO
	if err := s.requester.Do(ctx, method, fmt.Sprintf("%s/%d", followsPrefix, userID), nil, &resp); err != nil {
		return false, err
	}
	return resp.Followed, nil
}

func (s *Social) FollowingPage(ctx context.Context, userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error) {
	return s.userPage(ctx, fmt.Sprintf("%s/%d/following", followsPrefix, userID), pageQuery(page, pageSize))
}

func (s *Social) FollowersPage(ctx context.Context, userID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error) {
	return s.userPage(ctx, fmt.Sprintf("%s/%d/followers", followsPrefix, userID), pageQuery(page, pageSize))
}

func (s *Social) SearchUsers(ctx context.Context, query string, limit int) ([]domain.UserCard, error) {
	qs := url.Values{}
	qs.Set("query", query)
	qs.Set("limit", strconv.Itoa(limit))

	var resp listDTO[foundUserDTO]
	if err := s.requester.Do(ctx, http.MethodGet, usersPrefix+"/search?"+qs.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return toPage(resp, foundUserDTO.card).Items, nil
}

func (s *Social) UserPosts(ctx context.Context, userID int64, page, pageSize int) ([]domain.Post, error) {
	return s.posts(ctx, fmt.Sprintf("%s/%d/posts?%s", usersPrefix, userID, pageQuery(page, pageSize).Encode()))
}

func (s *Social) UserLikedPosts(ctx context.Context, userID int64, page, pageSize int) ([]domain.Post, error) {
	return s.posts(ctx, fmt.Sprintf("%s/%d/likes?%s", usersPrefix, userID, pageQuery(page, pageSize).Encode()))
}

func (s *Social) UserComments(ctx context.Context, userID int64, page, pageSize int) ([]domain.ProfileComment, error) {
	var resp listDTO[profileCommentDTO]
	path := fmt.Sprintf("%s/%d/comments?%s", usersPrefix, userID, pageQuery(page, pageSize).Encode())
	if err := s.requester.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return toPage(resp, profileCommentDTO.profileComment).Items, nil
}

func (s *Social) ListPosts(ctx context.Context, query domain.PostQuery) ([]domain.Post, error) {
	page, pageSize := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = feedPageSize
	}
	qs := pageQuery(page, pageSize)
	if len(query.AuthorIDs) > 0 {
		ids := make([]string, 0, len(query.AuthorIDs))
		for _, id := range query.AuthorIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		qs.Set("authorIds", strings.Join(ids, ","))
	}
	return s.posts(ctx, postsPrefix+"?"+qs.Encode())
}

func (s *Social) SearchPosts(ctx context.Context, text string, followOnly bool) ([]domain.Post, error) {
	qs := pageQuery(1, feedPageSize)
	qs.Set("query", text)
	qs.Set("followOnly", strconv.FormatBool(followOnly))
	return s.posts(ctx, postsPrefix+"/search?"+qs.Encode())
}

func (s *Social) CreatePost(ctx context.Context, post domain.NewPost) (domain.Post, error) {
	body := newPostDTO{Content: post.Content}
	if post.Picture != "" {
		body.Picture = &post.Picture
	}
	var resp postDTO
	if err := s.requester.Do(ctx, http.MethodPost, postsPrefix, body, &resp); err != nil {
		return domain.Post{}, err
	}
	return resp.post(), nil
}

// UploadImage stores image on the backend and returns its public URL.
func (s *Social) UploadImage(ctx context.Context, image domain.ImageUpload) (string, error) {
	var resp uploadDTO
	if err := s.requester.Upload(ctx, uploadPath, uploadField, image, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", ErrEmptyUploadURL
	}
	return resp.URL, nil
}

func (s *Social) DeletePost(ctx context.Context, postID int64) error {
	return s.requester.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", postsPrefix, postID), nil, nil)
}

func (s *Social) SetLike(ctx context.Context, postID int64, like bool) (domain.LikeResult, error) {
	method := http.MethodDelete
	if like {
		method = http.MethodPost
	}
	var resp likeResultDTO
	if err := s.requester.Do(ctx, method, fmt.Sprintf("%s/%d/like", postsPrefix, postID), nil, &resp); err != nil {
		return domain.LikeResult{}, err
	}
	return domain.LikeResult{Liked: resp.Liked, Likes: resp.Likes}, nil
}

func (s *Social) LikesPreview(ctx context.Context, postID int64, limit int) (domain.LikesPreview, error) {
	qs := url.Values{}
	qs.Set("limit", strconv.Itoa(limit))
	page, err := s.userPage(ctx, fmt.Sprintf("%s/%d/likes", postsPrefix, postID), qs)
	if err != nil {
		return domain.LikesPreview{}, err
	}
	total := page.Total
	if total < len(page.Items) {
		total = len(page.Items)
	}
	return domain.LikesPreview{Total: total, Users: page.Items}, nil
}

func (s *Social) LikesPage(ctx context.Context, postID int64, page, pageSize int) (paginate.Page[domain.UserSummary], error) {
	return s.userPage(ctx, fmt.Sprintf("%s/%d/likes", postsPrefix, postID), pageQuery(page, pageSize))
}

func (s *Social) CommentsPage(ctx context.Context, postID int64, page, pageSize int) (paginate.Page[domain.Comment], error) {
	var resp listDTO[commentDTO]
	path := fmt.Sprintf("%s/%d/comments?%s", postsPrefix, postID, pageQuery(page, pageSize).Encode())
	if err := s.requester.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return paginate.Page[domain.Comment]{}, err
	}
	return toPage(resp, commentDTO.comment), nil
}

func (s *Social) CreateComment(ctx context.Context, postID int64, content string) (domain.Comment, error) {
	var resp commentDTO
	body := map[string]string{"content": content}
	if err := s.requester.Do(ctx, http.MethodPost, fmt.Sprintf("%s/%d/comments", postsPrefix, postID), body, &resp); err != nil {
		return domain.Comment{}, err
	}
	return resp.comment(), nil
}

func (s *Social) EditComment(ctx context.Context, commentID int64, content string) (domain.Comment, error) {
	var resp commentDTO
	body := map[string]string{"content": content}
	if err := s.requester.Do(ctx, http.MethodPatch, fmt.Sprintf("%s/%d", commentsPrefix, commentID), body, &resp); err != nil {
		return domain.Comment{}, err
	}
	return resp.comment(), nil
}

func (s *Social) DeleteComment(ctx context.Context, commentID int64) error {
	return s.requester.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", commentsPrefix, commentID), nil, nil)
}

func (s *Social) userPage(ctx context.Context, path string, qs url.Values) (paginate.Page[domain.UserSummary], error) {
	var resp listDTO[authorDTO]
	if err := s.requester.Do(ctx, http.MethodGet, path+"?"+qs.Encode(), nil, &resp); err != nil {
		return paginate.Page[domain.UserSummary]{}, err
	}
	return toPage(resp, authorDTO.summary), nil
}

func (s *Social) posts(ctx context.Context, path string) ([]domain.Post, error) {
	var resp listDTO[postDTO]
	if err := s.requester.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return toPage(resp, postDTO.post).Items, nil
}

func sessionFrom(resp authDTO) (*domain.Session, error) {
	if resp.AccessToken == "" {
		return nil, ErrEmptyCredential
	}
	return &domain.Session{Credential: resp.AccessToken, Identity: resp.User.identity()}, nil
}

func pageQuery(page, pageSize int) url.Values {
	qs := url.Values{}
	qs.Set("page", strconv.Itoa(page))
	qs.Set("pageSize", strconv.Itoa(pageSize))
	return qs
}
