package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/audit"
	"github.com/prperemyshlev/wellness-portal/internal/config"
	"github.com/prperemyshlev/wellness-portal/internal/handler"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
	"github.com/prperemyshlev/wellness-portal/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
	audit  *audit.Sink
}

type handlers struct {
	auth      *handler.AuthHandler
	patient   *handler.PatientHandler
	provider  *handler.ProviderHandler
	healthTip *handler.HealthTipHandler
	health    *HealthChecker
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Store())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	hasher := utils.NewPasswordHasher(cfg.Password.Algorithm, cfg.Password.BCryptCost, utils.Argon2Params{
		Memory:      cfg.Password.Memory,
		Iterations:  cfg.Password.Iterations,
		Parallelism: cfg.Password.Parallelism,
	})

	var metrics *observability.AuthMetrics
	if telemetry := infra.Telemetry(); telemetry != nil {
		m, err := observability.NewAuthMetrics(telemetry.Meter)
		if err != nil {
			logger.Warn("Auth metrics disabled", zap.Error(err))
		} else {
			metrics = m
		}
	}

	sessions := service.NewSessionManager(repos.User, repos.Token, jwtManager)
	authService := service.NewAuthService(repos, sessions, jwtManager, hasher, metrics, logger)
	patientService := service.NewPatientService(repos, nil)
	providerService := service.NewProviderService(repos)
	tipService := service.NewHealthTipService(repos.HealthTip, nil)

	auditSink := audit.NewSink(repos.Audit, cfg.Audit.BufferSize, metrics, logger)

	var rateLimiter *service.RateLimiter
	if redis := infra.Redis(); redis != nil {
		rateLimiter = service.NewRateLimiter(redis.Client, cfg.RateLimit.Requests, cfg.RateLimit.Window.Duration)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))
	router.Use(handler.AuditMiddleware(auditSink, authService))

	setupRoutes(router, handlers{
		auth:      handler.NewAuthHandler(authService, logger),
		patient:   handler.NewPatientHandler(patientService, logger),
		provider:  handler.NewProviderHandler(providerService, logger),
		healthTip: handler.NewHealthTipHandler(tipService, logger),
		health:    NewHealthChecker(infra),
	}, authService, rateLimiter, infra.Telemetry(), logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
		audit:  auditSink,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	h handlers,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	telemetry *observability.Telemetry,
	logger *zap.Logger,
) {
	limited := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if rateLimiter == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{handler.RateLimitMiddleware(rateLimiter, handler.IPRouteKey, logger), next}
	}
	authenticated := handler.AuthMiddleware(authService)
	existingUser := handler.RequireUser(authService, logger)

	router.GET("/metrics", observability.PrometheusHandler(telemetry))
	router.GET("/health", h.health.Handler)
	router.NoRoute(handler.NotFound)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limited(h.auth.Register)...)
			auth.POST("/login", limited(h.auth.Login)...)
			auth.POST("/forget-password", limited(h.auth.ForgotPassword)...)
			auth.POST("/refresh", h.auth.Refresh)
			auth.GET("/me", authenticated, h.auth.GetMe)
			auth.POST("/logout", authenticated, h.auth.Logout)
			auth.POST("/logout-all", authenticated, h.auth.LogoutAll)
		}

		patients := api.Group("/patients", authenticated, existingUser)
		{
			patients.GET("/profile", h.patient.GetProfile)
			patients.PUT("/profile", h.patient.UpdateProfile)
			patients.GET("/goals", h.patient.ListGoals)
			patients.POST("/goals", h.patient.SaveGoal)
			patients.GET("/reminders", h.patient.ListReminders)
		}

		providers := api.Group("/providers", authenticated, existingUser)
		{
			providers.GET("/patients", h.provider.ListPatients)
			providers.GET("/patients/:id", h.provider.GetPatientDetails)
		}

		api.GET("/health-tips", h.healthTip.Today)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("store", a.config.Store.Backend),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

// Shutdown stops accepting requests, drains the audit buffer, then closes the store.
// The order matters: pending audit entries need an open store.
func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	serverErr := a.server.Shutdown(ctx)
	auditErr := a.audit.Close(ctx)
	if dropped := a.audit.Dropped(); dropped > 0 {
		a.infra.Logger().Warn("Audit entries dropped", zap.Uint64("count", dropped))
	}

	err := errors.Join(serverErr, auditErr, a.infra.Shutdown(ctx))
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
