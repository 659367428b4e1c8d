package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
)

// DSN renders the connection string for cfg. Credentials are URL-escaped.
func DSN(cfg config.PostgresSettings) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// PoolConfig parses DSN(cfg) and applies the non-zero pool limits on top of
// pgx defaults.
func PoolConfig(cfg config.PostgresSettings) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}

	override := func(set bool, apply func()) {
		if set {
			apply()
		}
	}
	override(cfg.MaxConns > 0, func() { pc.MaxConns = cfg.MaxConns })
	override(cfg.MinConns > 0, func() { pc.MinConns = cfg.MinConns })
	override(cfg.MaxConnLifetime > 0, func() { pc.MaxConnLifetime = cfg.MaxConnLifetime })
	override(cfg.MaxConnIdleTime > 0, func() { pc.MaxConnIdleTime = cfg.MaxConnIdleTime })
	override(cfg.HealthCheckPeriod > 0, func() { pc.HealthCheckPeriod = cfg.HealthCheckPeriod })

	if pc.MinConns > pc.MaxConns {
		return nil, fmt.Errorf("postgres.min_conns (%d) exceeds postgres.max_conns (%d)", pc.MinConns, pc.MaxConns)
	}
	return pc, nil
}

// NewPostgresPool opens the pool backing the durable session store.
func NewPostgresPool(ctx context.Context, cfg config.PostgresSettings, log *zap.Logger) (*pgxpool.Pool, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info("postgres session backend connected",
		zap.String("addr", pc.ConnConfig.Host),
		zap.String("database", pc.ConnConfig.Database),
		zap.Int32("max_conns", pc.MaxConns),
	)
	return pool, nil
}

// Pinger is the part of *pgxpool.Pool the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker adapts a pool to the readiness probe.
type Checker struct {
	Pool Pinger
}

// HealthCheck pings the pool.
func (c Checker) HealthCheck(ctx context.Context) error {
	if err := c.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}
