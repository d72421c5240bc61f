// Package server assembles the HTTP API and the loops that run beside it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"walletwhiz/internal/config"
	"walletwhiz/internal/database"
	"walletwhiz/internal/handlers"
	"walletwhiz/internal/middleware"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// maxBodySize leaves headroom above the CSV import limit for multipart framing.
const maxBodySize = "6M"

type Server struct {
	cfg         *config.Config
	echo        *echo.Echo
	repos       *Repositories
	services    *Services
	rateLimiter *middleware.IPRateLimiter
	logger      *slog.Logger
}

// New builds the API around db.
func New(cfg *config.Config, db *database.DB, deps Dependencies, logger *slog.Logger) *Server {
	repos := NewRepositories(db)
	svc := NewServices(cfg, repos, deps, logger)

	gatherer := prometheus.DefaultGatherer
	if g, ok := deps.Registerer.(prometheus.Gatherer); ok {
		gatherer = g
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	rateLimiter := middleware.NewIPRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.Server.CORSAllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.TraceIDHeader},
		ExposeHeaders: []string{middleware.TraceIDHeader, echo.HeaderContentDisposition},
	}))
	e.Use(echomw.BodyLimit(maxBodySize))
	e.Use(rateLimiter.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := NewHandlers(svc, handlers.NewHealthHandler(db.DB))
	RegisterRoutes(e, h, middleware.RequireAuth(svc.Token, repos.BlacklistedToken))

	return &Server{
		cfg:         cfg,
		echo:        e,
		repos:       repos,
		services:    svc,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

func (s *Server) Services() *Services {
	return s.services
}

// SeedDemo creates the demo account with generated history. It is a no-op
// when the account already exists.
func (s *Server) SeedDemo(cfg config.DemoConfig) (int, error) {
	seeder := services.NewDemoSeeder(s.repos.Users, s.repos.Categories, s.repos.Transactions,
		s.services.Auth, s.services.Insight, services.NewDemoDataGenerator(cfg.Seed), s.logger)
	return seeder.Seed(cfg)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves HTTP and the background loops until ctx is cancelled or one of
// them fails, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
		s.logger.Info("http server listening", slog.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down http server")
		return s.echo.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		s.services.Processor.Start(ctx)
		return nil
	})

	g.Go(func() error {
		s.rateLimiter.Run(ctx)
		return nil
	})

	g.Go(func() error {
		RunEvery(ctx, s.cfg.Worker.TokenCleanupInterval, func(context.Context) {
			s.cleanupTokens()
		})
		return nil
	})

	return g.Wait()
}

func (s *Server) cleanupTokens() {
	removed, err := s.services.Auth.CleanupExpiredTokens()
	if err != nil {
		s.logger.Error("token cleanup failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logger.Info("expired tokens removed", slog.Int64("count", removed))
	}
}

// RunEvery calls fn on every tick of interval until ctx is done. A
// non-positive interval disables the loop.
func RunEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// RefreshInsights regenerates insights for all users and drops expired ones.
func RefreshInsights(ctx context.Context, svc *Services, logger *slog.Logger) {
	refreshed, err := svc.Insight.RefreshAll(ctx)
	if err != nil {
		logger.Error("insight refresh failed", slog.Any("error", err))
	} else {
		for i := 0; i < refreshed; i++ {
			svc.Metrics.IncrementCounter(services.MetricInsightsRefreshed, nil)
		}
		logger.Info("insights refreshed", slog.Int("users", refreshed))
	}

	purged, err := svc.Insight.PurgeExpired()
	if err != nil {
		logger.Error("insight purge failed", slog.Any("error", err))
		return
	}
	if purged > 0 {
		logger.Info("expired insights purged", slog.Int64("count", purged))
	}
}
