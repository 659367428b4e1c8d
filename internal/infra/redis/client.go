package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
	pingTimeout = 5 * time.Second
)

// ErrUnavailable is returned when Redis does not answer a ping.
var ErrUnavailable = errors.New("redis unavailable")

// Client owns the connection used by the redis session store.
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// Options maps RedisSettings onto go-redis options. One agent serves one
// viewer, so the pool stays small.
func Options(cfg config.RedisSettings) *redis.Options {
	var tlsCfg *tls.Config
	if cfg.TLSEnabled {
		tlsCfg = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.Host}
	}
	return &redis.Options{
		Addr:            net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:        cfg.Password,
		DB:              cfg.DB,
		TLSConfig:       tlsCfg,
		PoolSize:        4,
		MinIdleConns:    1,
		MaxRetries:      3,
		DialTimeout:     dialTimeout,
		ReadTimeout:     ioTimeout,
		WriteTimeout:    ioTimeout,
		PoolTimeout:     ioTimeout + time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// NewClient connects to Redis and refuses to return until it answers.
func NewClient(ctx context.Context, cfg config.RedisSettings, logger *zap.Logger) (*Client, error) {
	c := &Client{rdb: redis.NewClient(Options(cfg)), logger: logger}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.HealthCheck(pingCtx); err != nil {
		_ = c.rdb.Close()
		return nil, err
	}

	logger.Info("redis session backend connected",
		zap.String("addr", c.rdb.Options().Addr),
		zap.Int("db", cfg.DB),
		zap.Bool("tls", cfg.TLSEnabled),
	)
	return c, nil
}

// Client exposes the go-redis handle for repositories.
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// HealthCheck pings Redis. It backs the readiness probe.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the pool, logging how many connections were still open.
func (c *Client) Close() error {
	stats := c.rdb.PoolStats()
	c.logger.Info("closing redis session backend",
		zap.Uint32("total_conns", stats.TotalConns),
		zap.Uint32("timeouts", stats.Timeouts),
	)
	return c.rdb.Close()
}
