package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
)

func userCard(id int64, followed bool) domain.UserCard {
	return domain.UserCard{
		Profile:      domain.UserProfile{Identity: domain.Identity{ID: id}},
		FollowedByMe: followed,
	}
}

func TestSearchUsersLoadsPostsOfFoundUsers(t *testing.T) {
	var gotQuery domain.PostQuery
	api := &stubSocialAPI{
		searchUsers: func(query string, limit int) ([]domain.UserCard, error) {
			if query != "ann" || limit != UserSearchLimit {
				t.Errorf("unexpected search %q limit %d", query, limit)
			}
			return []domain.UserCard{userCard(4, true), userCard(1, false)}, nil
		},
		listPosts: func(query domain.PostQuery) ([]domain.Post, error) {
			gotQuery = query
			return []domain.Post{{ID: 40, Author: domain.UserSummary{ID: 4}}}, nil
		},
	}
	h := newHarness(api)
	h.signIn(1, "tok1")

	result, err := h.coordinator.SearchUsers(context.Background(), "  ann ")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if result.Query != "ann" || len(result.Users) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !result.Users[0].ShowFollowButton || !result.Users[0].FollowedByMe {
		t.Fatalf("other users get a follow button, got %+v", result.Users[0])
	}
	if result.Users[1].ShowFollowButton {
		t.Fatalf("the viewer's own card must not offer a follow button")
	}
	if len(gotQuery.AuthorIDs) != 2 || gotQuery.AuthorIDs[0] != 4 || gotQuery.AuthorIDs[1] != 1 {
		t.Fatalf("listing must load posts of the found users, got %+v", gotQuery)
	}
	if len(result.Posts) != 1 || result.Posts[0].ID != 40 {
		t.Fatalf("unexpected posts %+v", result.Posts)
	}
}

func TestSearchUsersWithoutHitsEmptiesListing(t *testing.T) {
	api := &stubSocialAPI{}
	h := newHarness(api)
	seedPosts(t, h, domain.Post{ID: 10}, domain.Post{ID: 11})
	loadsBefore := api.listPostsCalls.Load()

	result, err := h.coordinator.SearchUsers(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if len(result.Users) != 0 || result.Posts == nil || len(result.Posts) != 0 {
		t.Fatalf("expected empty users and posts, got %+v", result)
	}
	if got := h.coordinator.svc.Posts.Posts(); len(got) != 0 {
		t.Fatalf("listing must be empty, got %+v", got)
	}
	if api.listPostsCalls.Load() != loadsBefore {
		t.Fatalf("no posts should be requested for an empty search")
	}
}

func TestSearchUsersBlankQueryRestoresFeed(t *testing.T) {
	searched := false
	var gotQuery domain.PostQuery
	api := &stubSocialAPI{
		searchUsers: func(string, int) ([]domain.UserCard, error) {
			searched = true
			return nil, nil
		},
		listPosts: func(query domain.PostQuery) ([]domain.Post, error) {
			gotQuery = query
			return []domain.Post{{ID: 1}, {ID: 2}}, nil
		},
	}
	h := newHarness(api)

	result, err := h.coordinator.SearchUsers(context.Background(), "   ")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if searched {
		t.Fatalf("a blank query must not reach the backend")
	}
	if len(gotQuery.AuthorIDs) != 0 || len(result.Posts) != 2 {
		t.Fatalf("blank query must reload the full feed, got %+v and %+v", gotQuery, result.Posts)
	}
}

func TestSearchUsersSupersededByNewerSearch(t *testing.T) {
	api := &stubSocialAPI{}
	h := newHarness(api)
	ctx := context.Background()

	api.searchUsers = func(query string, _ int) ([]domain.UserCard, error) {
		if query == "first" {
			// the viewer keeps typing while the first search is in flight
			if _, err := h.coordinator.SearchUsers(ctx, "second"); err != nil {
				t.Errorf("nested SearchUsers returned error: %v", err)
			}
			return []domain.UserCard{userCard(5, false)}, nil
		}
		return []domain.UserCard{userCard(6, false)}, nil
	}
	api.listPosts = func(query domain.PostQuery) ([]domain.Post, error) {
		if len(query.AuthorIDs) == 1 && query.AuthorIDs[0] == 6 {
			return []domain.Post{{ID: 60}}, nil
		}
		return []domain.Post{{ID: 50}}, nil
	}

	if _, err := h.coordinator.SearchUsers(ctx, "first"); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if got := h.coordinator.svc.Posts.Posts(); len(got) != 1 || got[0].ID != 60 {
		t.Fatalf("listing must reflect the newest search, got %+v", got)
	}
}
