package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/config"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/security"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/handlers"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/middleware"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Passwords    *usecase.PasswordService
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Tokens      *security.TokenService
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	checks := make(map[string]handlers.ReadinessCheck, 2)
	if deps.Database != nil {
		checks["postgres"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}

	healthHandler := handlers.NewHealthHandler(checks)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.Authenticate(deps.Tokens, deps.Logger))

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup, loginRateLimit(deps)...)

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
		registrationHandler.RegisterRoutes(authGroup, registerRateLimit(deps)...)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.Passwords)
		passwordHandler.RegisterRoutes(authGroup)
	}

	return r
}

func loginRateLimit(deps Dependencies) []gin.HandlerFunc {
	return rateLimitRule(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts)
}

func registerRateLimit(deps Dependencies) []gin.HandlerFunc {
	return rateLimitRule(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts)
}

func rateLimitRule(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
