package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/infra/config"
	"github.com/JCCG-code/tripshot-backend/internal/infra/database"
	kafkainfra "github.com/JCCG-code/tripshot-backend/internal/infra/kafka"
	"github.com/JCCG-code/tripshot-backend/internal/infra/logger"
	redisinfra "github.com/JCCG-code/tripshot-backend/internal/infra/redis"
	"github.com/JCCG-code/tripshot-backend/internal/infra/security"
	"github.com/JCCG-code/tripshot-backend/internal/infra/telemetry"
	postgresrepo "github.com/JCCG-code/tripshot-backend/internal/repository/postgres"
	redisrepo "github.com/JCCG-code/tripshot-backend/internal/repository/redis"
	"github.com/JCCG-code/tripshot-backend/internal/transport/http/middleware"
	"github.com/JCCG-code/tripshot-backend/internal/transport/http/routes"
	"github.com/JCCG-code/tripshot-backend/internal/usecase"
)

// Application owns every long-lived resource of the service and knows how
// to start and drain them.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracing  *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracing *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracing, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	tokenIssuer, err := security.NewTokenIssuer(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	passwordValidator := security.DefaultPasswordValidator(cfg.Password.MinLength, cfg.Password.MinScore)

	var (
		eventPublisher port.EventPublisher
		producer       *kafkainfra.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("kafka unavailable, domain events will be dropped", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, domain events will be dropped")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	repos := postgresrepo.NewRepositories(pool)

	rateLimitTTL := cfg.Redis.RateLimitTTL
	if rateLimitTTL <= 0 {
		window := cfg.RateLimit.WindowDuration
		if window <= 0 {
			window = time.Minute
		}
		rateLimitTTL = window * 2
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitTTL,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	resolver := usecase.NewIdentityResolver(repos.Identities)
	authService := usecase.NewAuthService(repos.Identities, hasher, tokenIssuer, passwordValidator, eventPublisher, log)
	graphService := usecase.NewGraphService(resolver, repos.Graph, eventPublisher, log)
	profileService := usecase.NewProfileService(resolver, repos.Identities, repos.Graph, hasher, passwordValidator, eventPublisher, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics,
		RateLimiter: rateLimiter,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:     authService,
			Profiles: profileService,
			Graph:    graphService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracing:  tracing,
	}, nil
}

// Run serves HTTP traffic until ctx is cancelled, then drains every
// resource in reverse construction order.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.pool.Close()
	defer func() {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis client", zap.Error(err))
		}
	}()
	defer func() {
		if a.producer == nil {
			return
		}
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("closing kafka producer", zap.Error(err))
		}
	}()
	defer func() {
		if a.tracing == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracing.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("shutting down tracer provider", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting identity API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
