// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It connects handlers, middleware and
// routes, and decides how the server starts and stops.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go loads config.Config → server.Config
//	Server.New() creates:
//	  session.Registry (one store per browser)
//	  auth.TokenService (signs the browser-session cookie)
//	  metrics registry → ActionMetrics (the service Recorder), HTTPMetrics
//	  SessionHandler(registry, ActionMetrics)
//
// Every dependency is assembled here (the composition root); nothing below
// this package constructs its own collaborators.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/binamite/internal/auth"
	"github.com/sakif/binamite/internal/handler"
	"github.com/sakif/binamite/internal/metrics"
	"github.com/sakif/binamite/internal/middleware"
	"github.com/sakif/binamite/internal/model"
	"github.com/sakif/binamite/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port int

	SessionSecret string
	SessionMaxAge time.Duration

	StoreMode     session.Mode
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Seed          []model.User

	RateLimitRPS   float64
	RateLimitBurst int
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the session registry and the rate limiter. Start runs
// their sweepers next to the HTTP listener and stops them on shutdown.
type Server struct {
	router   *chi.Mux
	config   Config
	logger   *slog.Logger
	registry *session.Registry
	limiter  *middleware.RateLimiter
	metrics  *prometheus.Registry
}

// New creates a new Server with the given config.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.SessionSecret, cfg.SessionMaxAge)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		registry: session.NewRegistry(session.RegistryConfig{
			Mode:    cfg.StoreMode,
			IdleTTL: cfg.IdleTTL,
			Seed:    cfg.Seed,
		}, logger),
		limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger),
		metrics: metrics.NewRegistry(),
	}

	s.setupRoutes(tokens)
	return s, nil
}

// Handler returns the root HTTP handler. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz         → liveness
// GET    /metrics         → Prometheus scrape
// GET    /api/session     → current user and user list
// POST   /api/signup      → register and sign in (rate limited)
// POST   /api/login       → sign in (rate limited)
// GET    /api/profile     → signed-in user
// PUT    /api/profile     → edit signed-in user
// POST   /api/logout      → sign out
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: unique ID per request, picked up by the logger
// 2. RealIP: real client IP from proxy headers, used by the rate limiter
// 3. Recoverer: a panic becomes a 500 instead of killing the process
// 4. Logger and HTTP metrics
// 5. BrowserSession, on /api only
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.NewHTTPMetrics(s.metrics).Middleware)

	actions := metrics.NewActionMetrics(s.metrics)
	metrics.RegisterActiveStores(s.metrics, s.registry.Len)

	healthHandler := handler.NewHealthHandler(s.registry)
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", metrics.Handler(s.metrics))

	sessionHandler := handler.NewSessionHandler(s.registry, actions, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.BrowserSession(tokens, s.logger))

		r.Get("/session", sessionHandler.HandleSession)

		r.With(s.limiter.Middleware).Post("/signup", sessionHandler.HandleSignup)
		r.With(s.limiter.Middleware).Post("/login", sessionHandler.HandleLogin)

		r.Get("/profile", sessionHandler.HandleGetProfile)
		r.Put("/profile", sessionHandler.HandleUpdateProfile)
		r.Post("/logout", sessionHandler.HandleLogout)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// Everything runs in one errgroup: the listener, the idle-store and
// rate-limit sweepers, and a watcher that shuts the listener down once
// SIGINT/SIGTERM arrives or the listener fails.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Stop the sweepers
//
// Session stores are in memory only; they are gone once the process exits.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("store_mode", string(s.config.StoreMode)),
			slog.Int("seed_users", len(s.config.Seed)),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.registry.Run(gctx, s.config.SweepInterval)
		return nil
	})

	g.Go(func() error {
		s.limiter.Run(gctx, s.config.SweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully", slog.Int("stores_dropped", s.registry.Len()))
		return nil
	})

	return g.Wait()
}
