package domain

import "strings"

// Identity is the signed-in viewer's profile as returned by the backend.
type Identity struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
}

// Label returns the best human readable name for the identity.
func (i Identity) Label() string {
	if name := strings.TrimSpace(i.DisplayName); name != "" {
		return name
	}
	if email := strings.TrimSpace(i.Email); email != "" {
		return email
	}
	return "signed in"
}

// UserSummary is the compact user row used by likes, follow lists and comment authors.
type UserSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	// FollowedByMe is only populated by follow listings.
	FollowedByMe *bool `json:"followedByMe,omitempty"`
}

// UserProfile is the hover-card view of another user.
type UserProfile struct {
	Identity
	BannerURL string `json:"bannerUrl,omitempty"`
}
