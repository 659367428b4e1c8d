package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/transport/http/handlers"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/transport/http/middleware"
)

// Agent is everything the rendering layer can ask of the coordinator.
type Agent interface {
	handlers.SessionAgent
	handlers.PostAgent
	handlers.CommentAgent
	handlers.UserAgent
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Agent       Agent
	HTTPMetrics *middleware.HTTPMetrics
	Tracer      trace.Tracer
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
	Checks   []NamedChecker
}

// HealthChecker exposes readiness behaviour for a backing store.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NamedChecker labels a readiness probe.
type NamedChecker struct {
	Name    string
	Checker HealthChecker
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(deps.Tracer))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.HTTPMetrics.Handler())
	if deps.Config != nil && len(deps.Config.App.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	}

	healthOptions := make([]handlers.HealthOption, 0, len(deps.Checks))
	for _, check := range deps.Checks {
		if check.Checker == nil {
			continue
		}
		healthOptions = append(healthOptions, handlers.WithReadinessCheck(check.Name, check.Checker.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	} else {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if deps.Agent == nil {
		return r
	}

	v1 := r.Group("/v1")
	{
		handlers.NewSessionHandler(deps.Agent).RegisterRoutes(v1.Group("/session"))
		handlers.NewPostHandler(deps.Agent).RegisterRoutes(v1.Group("/posts"))
		handlers.NewCommentHandler(deps.Agent).RegisterRoutes(v1.Group("/comments"))
		handlers.NewUserHandler(deps.Agent).RegisterRoutes(v1.Group("/users"), v1.Group("/me"))
	}

	return r
}
