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

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/database"
	kafkainfra "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/kafka"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/notification"
	redisinfra "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/redis"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/security"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/telemetry"
	postgresrepo "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository/postgres"
	redisrepo "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository/redis"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/routes"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

type Application struct {
	cfg        *config.AppConfig
	engine     *gin.Engine
	logger     *zap.Logger
	pool       *pgxpool.Pool
	redis      *redisinfra.Client
	producer   *kafkainfra.Producer
	dispatcher *notification.Dispatcher
	tracer     *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	ok := false
	defer func() {
		if !ok {
			a.close(context.Background())
		}
	}()

	if cfg.Telemetry.OTLPEndpoint != "" {
		a.tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Env, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	repos := postgresrepo.NewRepositories(a.pool)

	var cache port.Cache
	a.redis, err = redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, reference data will be read from postgres", zap.Error(err))
		a.redis = nil
	} else {
		cache = redisrepo.NewCache(a.redis.Client(), cfg.ReferenceCache.Prefix)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	authMetrics, err := telemetry.NewAuthMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("init auth metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	var (
		events   port.EventPublisher
		notifier port.Notifier
	)
	if len(cfg.Kafka.Brokers) > 0 {
		a.producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			return nil, fmt.Errorf("init kafka producer: %w", err)
		}
		events = kafkainfra.NewEventPublisher(a.producer, cfg.App, log)
		emails := kafkainfra.NewNotifier(a.producer)
		emails.CountDeliveryFailures(authMetrics.NotificationFailures)
		notifier = emails
		log.Info("kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Info("kafka brokers not configured, events and emails are logged only")
		events = kafkainfra.NewStubPublisher(log)
		notifier = kafkainfra.NewLogNotifier(log)
	}

	a.dispatcher = notification.NewDispatcher(notifier, notification.Config{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.SendTimeout,
	}, authMetrics.NotificationFailures, log)
	a.dispatcher.Start()

	hasher, err := security.NewPasswordHasher(security.HasherConfig{
		Algorithm:         cfg.Password.Algorithm,
		BcryptCost:        cfg.Password.BcryptCost,
		Argon2Memory:      cfg.Password.Argon2Memory,
		Argon2Iterations:  cfg.Password.Argon2Iterations,
		Argon2Parallelism: cfg.Password.Argon2Parallelism,
	})
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Algorithm:  cfg.JWT.Algorithm,
		DefaultTTL: cfg.JWT.DefaultTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
	}

	services := routes.ServiceSet{
		Registration: usecase.NewRegistrationService(usecase.RegistrationDeps{
			Users:         repos.Users,
			Hasher:        hasher,
			OTPs:          security.NewOTPGenerator(),
			Tokens:        tokens,
			Policy:        security.NewPasswordPolicy(0, cfg.Password.MinScore),
			Notifications: a.dispatcher,
			Events:        events,
			Metrics:       authMetrics,
			Logger:        log,
			OTPTTL:        cfg.OTP.TTL,
			UserTokenTTL:  cfg.JWT.UserTokenTTL,
		}),
		AdminAuth:     usecase.NewAdminAuthService(repos.Admins, hasher, tokens, events, authMetrics, cfg.JWT.AdminTokenTTL, log),
		Analytics:     usecase.NewAnalyticsService(repos.Events, repos.Registrations, repos.Announcements, repos.Students, repos.Users, cfg.Analytics.NewMemberWindow),
		Events:        usecase.NewEventService(repos.Events, repos.Registrations),
		Announcements: usecase.NewAnnouncementService(repos.Announcements),
		Students:      usecase.NewStudentService(repos.Students),
		Reference:     usecase.NewReferenceService(repos.Reference, cache, cfg.ReferenceCache.TTL, log),
		Principals:    usecase.NewPrincipalResolver(tokens, repos.Users, repos.Admins),
	}

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Services: services,
		Metrics:  httpMetrics,
		Gatherer: registry,
		Database: a.pool,
	}
	if a.redis != nil {
		deps.Cache = a.redis
	}
	a.engine = routes.Register(deps)

	ok = true
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then drains the notification
// queue and releases every connection.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting DevClub API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErrCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown server: %w", err)
	}
	a.close(shutdownCtx)
	return runErr
}

// close releases resources in reverse dependency order. The dispatcher is
// drained before the producer it sends through is closed.
func (a *Application) close(ctx context.Context) {
	if a.dispatcher != nil {
		if err := a.dispatcher.Shutdown(ctx); err != nil {
			a.logger.Warn("notification queue not drained", zap.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown tracer provider", zap.Error(err))
		}
	}
}
