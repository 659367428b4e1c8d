package domain

import "time"

// Post is a feed entry held in the local listing.
type Post struct {
	ID           int64       `json:"id"`
	Author       UserSummary `json:"author"`
	Picture      string      `json:"picture,omitempty"`
	Content      string      `json:"content"`
	Likes        int         `json:"likes"`
	CreatedAt    time.Time   `json:"createdAt"`
	LikedByMe    bool        `json:"likedByMe"`
	CommentCount int         `json:"commentCount"`
}

// LikesPreview is the bounded "who liked this" sample shown on hover.
type LikesPreview struct {
	Total int           `json:"total"`
	Users []UserSummary `json:"users"`
}

// LikeResult is the backend's answer to a like or unlike. Likes is nil when
// the backend omitted the new count.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes *int `json:"likes,omitempty"`
}

// Comment belongs to a single post.
type Comment struct {
	ID           int64       `json:"id"`
	PostID       int64       `json:"postId"`
	Content      string      `json:"content"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    *time.Time  `json:"updatedAt,omitempty"`
	Edited       bool        `json:"edited"`
	Author       UserSummary `json:"author"`
	EditableByMe bool        `json:"editableByMe"`
}

// CommentThread is the full comment listing for a post.
type CommentThread struct {
	PostID int64     `json:"postId"`
	Total  int       `json:"total"`
	Items  []Comment `json:"items"`
}

// FollowCounts carries follower and following totals for a profile.
type FollowCounts struct {
	UserID    int64 `json:"userId"`
	Followers int   `json:"followers"`
	Following int   `json:"following"`
}

// UserCard bundles the hover-card payload: profile plus follow state.
type UserCard struct {
	Profile      UserProfile `json:"profile"`
	FollowedByMe bool        `json:"followedByMe"`
	// ShowFollowButton is false for anonymous viewers and for the viewer's own card.
	ShowFollowButton bool `json:"showFollowButton"`
}

// Registration is the sign-up form.
type Registration struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// ProfilePatch carries optional profile edits; nil fields are left unchanged.
type ProfilePatch struct {
	DisplayName *string `json:"displayName,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// PostQuery selects a feed page.
type PostQuery struct {
	AuthorIDs []int64
	Page      int
	PageSize  int
}

// NewPost is the compose form. When Image is set it is uploaded first and
// its URL replaces Picture.
type NewPost struct {
	Content string       `json:"content"`
	Picture string       `json:"picture,omitempty"`
	Image   *ImageUpload `json:"-"`
}

// ImageUpload is an image attached to a new post. Data stays in memory so
// the upload can be replayed after a credential refresh.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProfileComment is a comment listed on its author's profile, with the post
// it was left on.
type ProfileComment struct {
	Comment
	PostContent string      `json:"postContent"`
	PostAuthor  UserSummary `json:"postAuthor"`
}
