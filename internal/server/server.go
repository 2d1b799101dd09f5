// Package server exposes the planner over HTTP: plan an uploaded order
// file, share a plan and fetch a shared plan back by id.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/piwi3910/LoadPlan/internal/engine"
	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/piwi3910/LoadPlan/internal/store"
	"github.com/piwi3910/LoadPlan/internal/telemetry"
	"github.com/rs/zerolog"
)

// PlanStore persists shared plans.
type PlanStore interface {
	SavePlan(ctx context.Context, plan store.SharedPlan) (string, error)
	GetPlan(ctx context.Context, id string) (*store.SharedPlan, error)
	ListPlans(ctx context.Context, limit int) ([]store.PlanInfo, error)
	HealthCheck(ctx context.Context) error
}

// Config holds the server settings.
type Config struct {
	Settings    model.PlanSettings
	Preferences engine.PreferenceResolver
	BaseURL     string // Prefix of share links
	BodyLimit   string // Maximum request size, e.g. "10M"
}

// Server is the HTTP API.
type Server struct {
	cfg     Config
	store   PlanStore
	metrics *telemetry.PlanMetrics
	log     zerolog.Logger
	echo    *echo.Echo
}

// New builds the server and registers its routes. metrics may be nil.
func New(cfg Config, st PlanStore, metrics *telemetry.PlanMetrics, log zerolog.Logger) *Server {
	if cfg.Preferences == nil {
		cfg.Preferences = model.DefaultPreferences()
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "10M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{cfg: cfg, store: st, metrics: metrics, log: log, echo: e}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(s.requestLogger)

	s.RegisterRoutes(e)
	return s
}

// RegisterRoutes adds the API routes to e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := e.Group("/api")
	api.POST("/plan", s.handlePlan)
	api.POST("/share", s.handleShare)
	api.GET("/shared", s.handleListShared)
	api.GET("/shared/:id", s.handleGetShared)
	api.GET("/shared/:id/pdf", s.handleGetSharedPDF)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server starting")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("HTTP server shutting down")
	return s.echo.Shutdown(shutdownCtx)
}

// requestLogger logs every handled request.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		s.log.Info().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("duration", time.Since(start)).
			Str("ip", c.RealIP()).
			Msg("request handled")

		return nil
	}
}
