package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/handlers"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Registration  *usecase.RegistrationService
	AdminAuth     *usecase.AdminAuthService
	Analytics     *usecase.AnalyticsService
	Events        *usecase.EventService
	Announcements *usecase.AnnouncementService
	Students      *usecase.StudentService
	Reference     *usecase.ReferenceService
	Principals    middleware.PrincipalResolver
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config         *config.AppConfig
	Logger         *zap.Logger
	Services       ServiceSet
	Metrics        *middleware.HTTPMetrics
	Gatherer       prometheus.Gatherer
	TracerProvider trace.TracerProvider
	Database       DatabaseChecker
	Cache          CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Tracing(middleware.TracingOptions{
		ServiceName:    serviceName(cfg),
		TracerProvider: deps.TracerProvider,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.Logger(log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	healthOptions := []handlers.HealthOption{handlers.WithHealthLogger(log)}
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(metricsHandler(deps.Gatherer)))
	handlers.RegisterSwagger(r)

	svc := deps.Services
	api := r.Group("/api")
	{
		if svc.Registration != nil {
			handlers.NewAuthHandler(svc.Registration, svc.Principals, log).RegisterRoutes(api)
		}

		if svc.Reference != nil {
			handlers.NewReferenceHandler(svc.Reference, log).RegisterRoutes(api.Group("/data"))
		}

		if svc.AdminAuth != nil && svc.Principals != nil {
			adminGroup := api.Group("/admin")
			adminHandler := handlers.NewAdminHandler(svc.AdminAuth, svc.Analytics, log)
			adminHandler.RegisterPublicRoutes(adminGroup)

			protected := adminGroup.Group("")
			protected.Use(middleware.RequireAdmin(svc.Principals))
			adminHandler.RegisterRoutes(protected)

			if svc.Events != nil {
				handlers.NewEventHandler(svc.Events, log).RegisterRoutes(protected)
			}
			if svc.Announcements != nil {
				handlers.NewAnnouncementHandler(svc.Announcements, log).RegisterRoutes(protected)
			}
			if svc.Students != nil {
				handlers.NewStudentHandler(svc.Students, log).RegisterRoutes(protected)
			}
			if svc.Reference != nil {
				handlers.NewReferenceHandler(svc.Reference, log).RegisterAdminRoutes(protected)
			}
		}
	}

	return r
}

func serviceName(cfg *config.AppConfig) string {
	if cfg.Telemetry.ServiceName != "" {
		return cfg.Telemetry.ServiceName
	}
	return cfg.App.Name
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
