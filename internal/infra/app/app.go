package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/config"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/database"
	kafkainfra "github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/kafka"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/logger"
	redisinfra "github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/redis"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/security"
	postgresrepo "github.com/WebPetFabrica/web-pet-back-sub000/internal/repository/postgres"
	redisrepo "github.com/WebPetFabrica/web-pet-back-sub000/internal/repository/redis"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/middleware"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/routes"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/usecase"
)

// Application wires the service together and owns its lifecycle.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	log    *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

// New builds the application. The signing secret is validated before any
// connection is opened: a misconfigured secret refuses to boot.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := security.ValidateSigningSecret(cfg.JWT.Secret); err != nil {
		return nil, fmt.Errorf("validate jwt secret: %w", err)
	}

	location := time.UTC
	if cfg.JWT.Timezone != "" {
		location, err = time.LoadLocation(cfg.JWT.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load jwt timezone %q: %w", cfg.JWT.Timezone, err)
		}
	}

	tokenService, err := security.NewTokenService(security.TokenServiceConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		TTL:      cfg.JWT.TokenTTL,
		Location: location,
	})
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
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

	repos := postgresrepo.NewRepositories(pool)

	authCache := redisrepo.NewAuthCache(redisClient.Client(), redisrepo.AuthCacheConfig{
		IdentityTTL: cfg.Cache.IdentityTTL,
		TokenTTL:    cfg.Cache.TokenTTL,
	})
	attemptStore := redisrepo.NewLoginAttemptRepository(redisClient.Client(), redisrepo.LoginAttemptConfig{
		Lockout: cfg.Throttle.LockoutDuration,
	})

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.RateLimitConfig{
		TTL: rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var eventPublisher port.EventPublisher
	var kafkaProducer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	resolver := usecase.NewIdentityResolver(repos.Individuals, repos.Organizations, repos.Protectors)
	throttle := usecase.NewLoginThrottle(attemptStore, cfg.Throttle.MaxFailures, cfg.Throttle.LockoutDuration)
	emailValidator := security.NewEmailValidator(security.NewDNSDomainResolver())
	passwordValidator := security.DefaultPasswordValidator()

	authService := usecase.NewAuthService(resolver, throttle, authCache, repos.Sessions, tokenService, eventPublisher, log)
	registrationService := usecase.NewRegistrationService(
		resolver,
		repos.Individuals,
		repos.Organizations,
		repos.Protectors,
		repos.PasswordHistory,
		emailValidator,
		passwordValidator,
		tokenService,
		authCache,
		eventPublisher,
		log,
	)
	passwordService := usecase.NewPasswordService(resolver, repos.PasswordHistory, passwordValidator, authCache, eventPublisher, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Tokens:      tokenService,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Passwords:    passwordService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		log:    log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.log.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
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

	a.log.Info("starting web-pet auth API",
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
