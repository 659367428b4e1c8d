package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Session.Backend != SessionBackendMemory || cfg.Session.Key != "miniig_session" {
		t.Fatalf("unexpected session settings %+v", cfg.Session)
	}
	if cfg.Cache.FollowSetTTL != 30*time.Second || cfg.Cache.LikesPreviewTTL != 15*time.Second {
		t.Fatalf("unexpected cache ttls %+v", cfg.Cache)
	}
	if cfg.Cache.CommentsTTL != 15*time.Second || cfg.Cache.UserPreviewTTL != 30*time.Second {
		t.Fatalf("unexpected cache ttls %+v", cfg.Cache)
	}
	if cfg.Cache.LikesPreviewLimit != 5 {
		t.Fatalf("expected likes preview limit 5, got %d", cfg.Cache.LikesPreviewLimit)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Fatalf("expected 10s backend timeout, got %v", cfg.Backend.Timeout)
	}
}

func TestLoadReadsPrefixedEnv(t *testing.T) {
	t.Setenv("SOCIAL_BACKEND_BASE_URL", "https://social.example.com")
	t.Setenv("SOCIAL_SESSION_BACKEND", "redis")
	t.Setenv("SOCIAL_CACHE_LIKES_PREVIEW_TTL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend.BaseURL != "https://social.example.com" {
		t.Fatalf("unexpected base url %q", cfg.Backend.BaseURL)
	}
	if cfg.Session.Backend != SessionBackendRedis {
		t.Fatalf("unexpected backend %q", cfg.Session.Backend)
	}
	if cfg.Cache.LikesPreviewTTL != 5*time.Second {
		t.Fatalf("unexpected likes preview ttl %v", cfg.Cache.LikesPreviewTTL)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]struct {
		key, value, want string
	}{
		"unknown backend": {"SOCIAL_SESSION_BACKEND", "sqlite", "unsupported session.backend"},
		"zero ttl":        {"SOCIAL_CACHE_COMMENTS_TTL", "0s", "cache.comments_ttl"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
