package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
)

func TestCreatePostUploadsImageThenReloadsListing(t *testing.T) {
	api := &stubSocialAPI{}
	h := newHarness(api)
	h.signIn(1, "tok1")
	ctx := context.Background()
	seedPosts(t, h, domain.Post{ID: 10})

	if _, err := h.coordinator.ShowLikesPreview(ctx, 10); err != nil {
		t.Fatalf("ShowLikesPreview returned error: %v", err)
	}

	var sent domain.NewPost
	api.createPost = func(post domain.NewPost) (domain.Post, error) {
		sent = post
		return domain.Post{ID: 11, Content: post.Content, Picture: post.Picture}, nil
	}
	loadsBefore := api.listPostsCalls.Load()

	post, err := h.coordinator.CreatePost(ctx, domain.NewPost{
		Content: "  sunny day  ",
		Image:   &domain.ImageUpload{Filename: "beach.PNG", ContentType: "image/png", Data: []byte{1, 2}},
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if post.ID != 11 {
		t.Fatalf("unexpected post %+v", post)
	}
	if sent.Content != "sunny day" || sent.Picture != "/uploads/beach.PNG" {
		t.Fatalf("draft must be trimmed and carry the uploaded picture, got %+v", sent)
	}
	if api.uploadCalls.Load() != 1 {
		t.Fatalf("expected one upload, got %d", api.uploadCalls.Load())
	}
	if got := api.listPostsCalls.Load() - loadsBefore; got != 1 {
		t.Fatalf("expected the listing to reload once, got %d", got)
	}

	if _, err := h.coordinator.ShowLikesPreview(ctx, 10); err != nil {
		t.Fatalf("ShowLikesPreview returned error: %v", err)
	}
	if got := api.likesPreviewCalls.Load(); got != 2 {
		t.Fatalf("reload after create must drop cached previews, got %d preview calls", got)
	}
}

func TestCreatePostRejectsBeforeReachingBackend(t *testing.T) {
	boom := errors.New("storage full")
	cases := []struct {
		name     string
		signedIn bool
		draft    domain.NewPost
		upload   error
		want     error
	}{
		{name: "signed out", draft: domain.NewPost{Content: "hi"}, want: ErrNotAuthenticated},
		{name: "blank", signedIn: true, draft: domain.NewPost{Content: " \n\t"}, want: ErrEmptyPost},
		{name: "too long", signedIn: true, draft: domain.NewPost{Content: strings.Repeat("字", MaxPostLength+1)}, want: ErrPostTooLong},
		{
			name:     "unsupported image",
			signedIn: true,
			draft:    domain.NewPost{Content: "hi", Image: &domain.ImageUpload{Filename: "scan.bmp", Data: []byte{1}}},
			want:     ErrUnsupportedImage,
		},
		{
			name:     "upload failure",
			signedIn: true,
			draft:    domain.NewPost{Content: "hi", Image: &domain.ImageUpload{Filename: "a.gif", Data: []byte{1}}},
			upload:   boom,
			want:     boom,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			created := 0
			api := &stubSocialAPI{
				createPost: func(post domain.NewPost) (domain.Post, error) {
					created++
					return domain.Post{ID: 1}, nil
				},
			}
			if tc.upload != nil {
				api.uploadImage = func(domain.ImageUpload) (string, error) { return "", tc.upload }
			}
			h := newHarness(api)
			if tc.signedIn {
				h.signIn(1, "tok1")
			}

			if _, err := h.coordinator.CreatePost(context.Background(), tc.draft); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if created != 0 {
				t.Fatalf("backend must not create a post, got %d creates", created)
			}
		})
	}
}

func TestCreatePostSkipsUploadForEmptyImage(t *testing.T) {
	api := &stubSocialAPI{}
	h := newHarness(api)
	h.signIn(1, "tok1")

	post, err := h.coordinator.CreatePost(context.Background(), domain.NewPost{
		Content: "text only",
		Picture: "/uploads/kept.png",
		Image:   &domain.ImageUpload{Filename: "empty.png"},
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if api.uploadCalls.Load() != 0 || post.Picture != "/uploads/kept.png" {
		t.Fatalf("an empty image must not be uploaded, got %d uploads and %+v", api.uploadCalls.Load(), post)
	}
}

func TestCreatePostSurvivesFailedReload(t *testing.T) {
	api := &stubSocialAPI{
		listPosts: func(domain.PostQuery) ([]domain.Post, error) {
			return nil, errors.New("feed down")
		},
	}
	h := newHarness(api)
	h.signIn(1, "tok1")

	post, err := h.coordinator.CreatePost(context.Background(), domain.NewPost{Content: "still here"})
	if err != nil {
		t.Fatalf("a failed reload must not fail the create, got %v", err)
	}
	if post.Content != "still here" {
		t.Fatalf("unexpected post %+v", post)
	}
}

func TestAllowedImage(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png":     true,
		"b.JPG":     true,
		"c.jpeg":    true,
		"d.gif":     true,
		"e.webp":    true,
		"f.svg":     false,
		"noext":     false,
		"dir.png/x": false,
	} {
		if got := AllowedImage(name); got != want {
			t.Errorf("AllowedImage(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestProfileTabsReplaceListing(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	api := &stubSocialAPI{
		userPosts: func(userID int64, page, pageSize int) ([]domain.Post, error) {
			if userID != 4 || page != 1 || pageSize != ProfileTabPageSize {
				t.Errorf("unexpected user posts request %d %d %d", userID, page, pageSize)
			}
			return []domain.Post{
				{ID: 20, Author: domain.UserSummary{ID: 4}, CreatedAt: base},
				{ID: 21, Author: domain.UserSummary{ID: 4}, CreatedAt: base.Add(time.Hour), Likes: 2},
			}, nil
		},
		userLiked: func(userID int64, _, _ int) ([]domain.Post, error) {
			return []domain.Post{{ID: 30, LikedByMe: true, Likes: 1}}, nil
		},
		setLike: func(_ int64, like bool) (domain.LikeResult, error) {
			return domain.LikeResult{Liked: like, Likes: intPtr(3)}, nil
		},
	}
	h := newHarness(api)
	h.signIn(1, "tok1")
	ctx := context.Background()
	seedPosts(t, h, domain.Post{ID: 10})

	posts, err := h.coordinator.LoadUserPosts(ctx, 4)
	if err != nil {
		t.Fatalf("LoadUserPosts returned error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != 21 {
		t.Fatalf("expected newest first, got %+v", posts)
	}
	if _, ok := h.coordinator.svc.Posts.Get(10); ok {
		t.Fatalf("feed post must be gone after switching to the profile tab")
	}

	post, err := h.coordinator.ToggleLike(ctx, 21)
	if err != nil {
		t.Fatalf("ToggleLike on a profile post returned error: %v", err)
	}
	if !post.LikedByMe || post.Likes != 3 {
		t.Fatalf("profile post must be patched, got %+v", post)
	}

	liked, err := h.coordinator.LoadUserLikes(ctx, 4)
	if err != nil {
		t.Fatalf("LoadUserLikes returned error: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != 30 {
		t.Fatalf("unexpected liked posts %+v", liked)
	}
	if got := h.coordinator.svc.Posts.Posts(); len(got) != 1 || got[0].ID != 30 {
		t.Fatalf("listing must hold the liked tab, got %+v", got)
	}

	if _, err := h.coordinator.LoadUserPosts(ctx, 0); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestUserCommentsLeavesListing(t *testing.T) {
	api := &stubSocialAPI{
		userComments: func(userID int64, page, pageSize int) ([]domain.ProfileComment, error) {
			if pageSize != ProfileCommentsPageSize {
				t.Errorf("unexpected page size %d", pageSize)
			}
			return []domain.ProfileComment{{
				Comment:     domain.Comment{ID: 7, PostID: 10, Content: "nice"},
				PostContent: "feed post",
			}}, nil
		},
	}
	h := newHarness(api)
	seedPosts(t, h, domain.Post{ID: 10})

	comments, err := h.coordinator.UserComments(context.Background(), 4)
	if err != nil {
		t.Fatalf("UserComments returned error: %v", err)
	}
	if len(comments) != 1 || comments[0].PostContent != "feed post" {
		t.Fatalf("unexpected comments %+v", comments)
	}
	if _, ok := h.coordinator.svc.Posts.Get(10); !ok {
		t.Fatalf("the comments tab must not touch the listing")
	}
}

func TestClearDropsLoadInFlight(t *testing.T) {
	api := &stubSocialAPI{}
	h := newHarness(api)
	posts := h.coordinator.svc.Posts

	api.listPosts = func(domain.PostQuery) ([]domain.Post, error) {
		posts.Clear()
		return []domain.Post{{ID: 1}}, nil
	}
	if _, err := posts.Load(context.Background(), domain.PostQuery{}); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if got := posts.Posts(); len(got) != 0 {
		t.Fatalf("cleared listing must stay empty, got %+v", got)
	}
}
