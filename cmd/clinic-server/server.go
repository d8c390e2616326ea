package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinicsys/clinic/internal/config"
	"github.com/clinicsys/clinic/internal/domain/clinic"
	"github.com/clinicsys/clinic/internal/platform/auth"
	"github.com/clinicsys/clinic/internal/platform/db"
	"github.com/clinicsys/clinic/internal/platform/middleware"
	"github.com/clinicsys/clinic/internal/platform/notification"
	"github.com/clinicsys/clinic/migrations"
)

const version = "0.1.0"

func runServer(migrate bool) error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	var (
		store  *clinic.Store
		pinger db.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store = clinic.NewMemStore()
		logger.Warn().Msg("using in-memory store, data will not survive a restart")
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to database")
			return err
		}
		defer pool.Close()
		logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

		if migrate {
			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx, cfg.DBSchema)
			if err != nil {
				logger.Error().Err(err).Msg("migration failed")
				return err
			}
			logger.Info().Int("applied", count).Msg("migrations up to date")
		}

		store = clinic.NewPGStore(pool)
		pinger = pool
	}

	svc := clinic.NewService(clinic.WithStoreLogging(store, logger))
	if cfg.SMSEnabled() {
		sender := notification.NewHTTPSMSSender(notification.ProviderConfig{
			URL:     cfg.SMSProviderURL,
			APIKey:  cfg.SMSProviderAPIKey,
			Timeout: cfg.SMSTimeout,
		})
		svc.SetNotifier(notification.NewSMSNotifier(sender, logger))
		logger.Info().Msg("appointment confirmations enabled")
	}

	limiter := middleware.NewIPRateLimiter(rateLimitConfig(cfg))
	go limiter.Run(ctx, time.Minute)

	e := newServer(cfg, svc, pinger, limiter, logger)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error().Err(err).Msg("server error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}
	return rl
}

// newServer assembles the HTTP surface. pinger is nil when there is no
// database behind the store.
func newServer(cfg *config.Config, svc *clinic.Service, pinger db.Pinger, limiter *middleware.IPRateLimiter, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.BodyLimit("1M"))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if pinger != nil {
		e.GET("/health/db", db.HealthHandler(pinger))
	}

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(limiter))
	apiV1.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		logger.Warn().Msg("authentication disabled, every request is treated as admin")
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(jwtConfig(cfg)))
	}

	clinic.NewHandler(svc).RegisterRoutes(apiV1)
	return e
}
