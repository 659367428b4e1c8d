package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
)

func settingsFor(t *testing.T, server *miniredis.Miniredis) config.RedisSettings {
	t.Helper()
	host, portText, ok := strings.Cut(server.Addr(), ":")
	if !ok {
		t.Fatalf("unexpected miniredis addr %q", server.Addr())
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return config.RedisSettings{Host: host, Port: port}
}

func TestNewClientPingsAndChecksHealth(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewClient(context.Background(), settingsFor(t, server), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}

	server.Close()
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once redis is gone, got %v", err)
	}
	_ = client.Close()
}

func TestNewClientFailsWhenUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := settingsFor(t, server)
	server.Close()

	if _, err := NewClient(context.Background(), cfg, zaptest.NewLogger(t)); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOptionsEnableTLS(t *testing.T) {
	opts := Options(config.RedisSettings{Host: "cache", Port: 6380, TLSEnabled: true})
	if opts.Addr != "cache:6380" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.ServerName != "cache" {
		t.Fatalf("expected TLS config bound to the redis host, got %+v", opts.TLSConfig)
	}
	if plain := Options(config.RedisSettings{Host: "cache", Port: 6379}); plain.TLSConfig != nil {
		t.Fatalf("TLS must stay off unless enabled")
	}
}
