package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

type userDTO struct {
	UserID     int64   `json:"userId"`
	Email      string  `json:"email"`
	UserName   string  `json:"userName"`
	Bio        *string `json:"bio"`
	ProfilePic *string `json:"profilePic"`
	BannerPic  *string `json:"bannerPic"`
}

func (u userDTO) identity() domain.Identity {
	return domain.Identity{
		ID:          u.UserID,
		DisplayName: u.UserName,
		Email:       u.Email,
		Bio:         deref(u.Bio),
		AvatarURL:   deref(u.ProfilePic),
	}
}

func (u userDTO) profile() domain.UserProfile {
	return domain.UserProfile{Identity: u.identity(), BannerURL: deref(u.BannerPic)}
}

type authorDTO struct {
	UserID       int64   `json:"userId"`
	UserName     string  `json:"userName"`
	ProfilePic   *string `json:"profilePic"`
	FollowedByMe *bool   `json:"followedByMe"`
}

func (a authorDTO) summary() domain.UserSummary {
	name := a.UserName
	if name == "" {
		name = "unknown"
	}
	return domain.UserSummary{
		ID:           a.UserID,
		Name:         name,
		AvatarURL:    deref(a.ProfilePic),
		FollowedByMe: a.FollowedByMe,
	}
}

type authDTO struct {
	AccessToken string  `json:"accessToken"`
	User        userDTO `json:"user"`
}

type postDTO struct {
	PostID       int64     `json:"postId"`
	Author       authorDTO `json:"author"`
	Picture      *string   `json:"picture"`
	Content      string    `json:"content"`
	Likes        int       `json:"likes"`
	CreatedAt    time.Time `json:"createdAt"`
	LikedByMe    bool      `json:"likedByMe"`
	CommentCount int       `json:"commentCount"`
}

func (p postDTO) post() domain.Post {
	return domain.Post{
		ID:           p.PostID,
		Author:       p.Author.summary(),
		Picture:      deref(p.Picture),
		Content:      p.Content,
		Likes:        p.Likes,
		CreatedAt:    p.CreatedAt,
		LikedByMe:    p.LikedByMe,
		CommentCount: p.CommentCount,
	}
}

type commentDTO struct {
	CommentID    int64      `json:"commentId"`
	PostID       int64      `json:"postId"`
	Content      string     `json:"content"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
	Edited       bool       `json:"edited"`
	Author       authorDTO  `json:"author"`
	EditableByMe bool       `json:"editableByMe"`
}

func (c commentDTO) comment() domain.Comment {
	return domain.Comment{
		ID:           c.CommentID,
		PostID:       c.PostID,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Edited:       c.Edited || c.UpdatedAt != nil,
		Author:       c.Author.summary(),
		EditableByMe: c.EditableByMe,
	}
}

type profileCommentDTO struct {
	commentDTO
	Post struct {
		PostID  int64     `json:"postId"`
		Content string    `json:"content"`
		Author  authorDTO `json:"author"`
	} `json:"post"`
}

func (c profileCommentDTO) profileComment() domain.ProfileComment {
	comment := c.comment()
	if comment.PostID == 0 {
		comment.PostID = c.Post.PostID
	}
	return domain.ProfileComment{
		Comment:     comment,
		PostContent: c.Post.Content,
		PostAuthor:  c.Post.Author.summary(),
	}
}

// foundUserDTO is a user search hit. followedByMe is absent for anonymous
// viewers.
type foundUserDTO struct {
	userDTO
	FollowedByMe *bool `json:"followedByMe"`
}

func (u foundUserDTO) card() domain.UserCard {
	return domain.UserCard{
		Profile:      u.profile(),
		FollowedByMe: u.FollowedByMe != nil && *u.FollowedByMe,
	}
}

type newPostDTO struct {
	Content string  `json:"content"`
	Picture *string `json:"picture,omitempty"`
}

type uploadDTO struct {
	URL string `json:"url"`
}

// listDTO accepts both a bare JSON array and an {items, total} envelope.
// Missing items decode to an empty slice and a missing total stays unknown.
type listDTO[T any] struct {
	Items []T
	Total int
}

func (l *listDTO[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		l.Items = items
		l.Total = 0
		return nil
	}

	var env struct {
		Items []T `json:"items"`
		Total *int `json:"total"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	l.Items = env.Items
	l.Total = 0
	if env.Total != nil && *env.Total > 0 {
		l.Total = *env.Total
	}
	return nil
}

func toPage[T, D any](list listDTO[T], convert func(T) D) paginate.Page[D] {
	out := paginate.Page[D]{Items: make([]D, 0, len(list.Items)), Total: list.Total}
	for _, item := range list.Items {
		out.Items = append(out.Items, convert(item))
	}
	return out
}

type followStatusDTO struct {
	UserID       int64 `json:"userId"`
	FollowedByMe bool  `json:"followedByMe"`
}

type followResultDTO struct {
	Followed bool `json:"followed"`
}

type likeResultDTO struct {
	Liked bool `json:"liked"`
	Likes *int `json:"likes"`
}

type profilePatchDTO struct {
	UserName   *string `json:"userName,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	ProfilePic *string `json:"profilePic,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
