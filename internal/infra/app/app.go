package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/api"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/database"
	kafkainfra "github.com/Lyuuwu/db-project-SocialMedia/internal/infra/kafka"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/logger"
	redisinfra "github.com/Lyuuwu/db-project-SocialMedia/internal/infra/redis"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/security"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/telemetry"
	memoryrepo "github.com/Lyuuwu/db-project-SocialMedia/internal/repository/memory"
	postgresrepo "github.com/Lyuuwu/db-project-SocialMedia/internal/repository/postgres"
	redisrepo "github.com/Lyuuwu/db-project-SocialMedia/internal/repository/redis"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/transport/http/middleware"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/transport/http/routes"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

var _ routes.Agent = (*usecase.Coordinator)(nil)

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}

	if cfg.Telemetry.TracingEnabled {
		tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		a.tracer = tp
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := telemetry.NewMetrics(telemetry.MetricsOptions{Registerer: registry})
	if err != nil {
		return nil, fmt.Errorf("init cache metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	persistence, checks, err := a.sessionPersistence(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	sessions := usecase.NewSessionStore(persistence).WithLogger(log)
	if err := sessions.Load(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client, err := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init backend client: %w", err)
	}
	refresher := usecase.NewCredentialRefresher(client, sessions).
		WithLogger(log).
		WithMetrics(metrics).
		WithInspector(security.InspectCredential)
	client.WithCredentials(sessions).
		WithRefresher(refresher).
		WithLogger(log).
		WithAuthLost(func(ctx context.Context) {
			if err := sessions.Set(ctx, nil); err != nil {
				log.Warn("failed to clear session after authentication loss", zap.Error(err))
			}
		})
	social := api.NewSocial(client)

	coordinator := a.buildCoordinator(social, sessions, metrics)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Agent:       coordinator,
		HTTPMetrics: httpMetrics,
		Tracer:      a.tracer.Tracer("social-client/http"),
		Gatherer:    registry,
		Checks:      checks,
	})
	a.engine = engine

	return a, nil
}

func (a *Application) sessionPersistence(ctx context.Context) (port.SessionPersistence, []routes.NamedChecker, error) {
	cfg := a.cfg
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := redisinfra.NewClient(ctx, cfg.Redis, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = client
		store := redisrepo.NewSessionStore(client.Client(), cfg.Redis.KeyPrefix, cfg.Session.Key)
		return store, []routes.NamedChecker{{Name: "redis", Checker: client}}, nil

	case config.SessionBackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres: %w", err)
		}
		a.pool = pool
		store := postgresrepo.NewSessionStore(pool, cfg.Session.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return store, []routes.NamedChecker{{Name: "postgres", Checker: database.Checker{Pool: pool}}}, nil

	default:
		a.logger.Info("session kept in memory only; it will not survive a restart")
		return memoryrepo.NewSessionStore(), nil, nil
	}
}

func (a *Application) buildCoordinator(social port.SocialAPI, sessions *usecase.SessionStore, metrics *telemetry.Metrics) *usecase.Coordinator {
	cfg := a.cfg.Cache
	log := a.logger

	likesPreview := cache.NewGuarded(cache.NewTTL[int64, domain.LikesPreview](usecase.CacheLikesPreview, cfg.LikesPreviewTTL)).
		WithLogger(log).WithMetrics(metrics)
	threads := cache.NewGuarded(cache.NewTTL[int64, domain.CommentThread](usecase.CacheComments, cfg.CommentsTTL)).
		WithLogger(log).WithMetrics(metrics)
	profiles := cache.NewGuarded(cache.NewTTL[int64, domain.UserProfile](usecase.CacheUserPreview, cfg.UserPreviewTTL)).
		WithLogger(log).WithMetrics(metrics)
	followStatus := cache.NewGuarded(cache.NewTTL[int64, bool](usecase.CacheFollowStatus, cfg.FollowStatusTTL)).
		WithLogger(log).WithMetrics(metrics)

	followSet := usecase.NewFollowSetCache(social, sessions, cfg.FollowSetTTL).
		WithLogger(log).
		WithMetrics(metrics)

	svc := usecase.Services{
		API:       social,
		Sessions:  sessions,
		Posts:     usecase.NewPostService(social, sessions).WithLogger(log),
		Likes:     usecase.NewLikeService(social, sessions, likesPreview, cfg.LikesPreviewLimit).WithLogger(log),
		Comments:  usecase.NewCommentService(social, sessions, threads).WithLogger(log),
		Follows:   usecase.NewFollowService(social, sessions, followSet, followStatus).WithLogger(log),
		FollowSet: followSet,
		Users:     usecase.NewUserService(social, profiles),
	}

	return usecase.NewCoordinator(svc, a.eventPublisher()).
		WithLogger(log).
		WithInspector(security.InspectCredential)
}

func (a *Application) eventPublisher() port.EventPublisher {
	cfg := a.cfg
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka disabled, activity events are only logged")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}
	a.producer = producer
	return kafkainfra.NewEventPublisher(producer, cfg.App, a.logger)
}

func (a *Application) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("failed to close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if err := a.tracer.Shutdown(context.Background()); err != nil {
		a.logger.Warn("failed to shut down tracer", zap.Error(err))
	}
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * a.cfg.Backend.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting social client agent",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("backend", a.cfg.Backend.BaseURL),
		zap.String("session_backend", a.cfg.Session.Backend),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
