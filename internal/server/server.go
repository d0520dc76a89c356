// Package server is the composition root of healthd: it opens the database,
// builds services and handlers, mounts the routes and runs the HTTP server
// until it is told to stop.
//
// WIRING:
//
//	sqlite.DB → services (auth, users, diary, recommendations) → handlers → chi routes
//
// Everything is created in New, so tests can build a full server around an
// in-memory database and drive it through Handler().
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sakif/health-diary/internal/config"
	"github.com/sakif/health-diary/internal/handler"
	"github.com/sakif/health-diary/internal/metrics"
	"github.com/sakif/health-diary/internal/middleware"
	"github.com/sakif/health-diary/internal/recommend"
	sqliteRepo "github.com/sakif/health-diary/internal/repository/sqlite"
	"github.com/sakif/health-diary/internal/service"
)

// Server owns the router, the database and the rate limiter.
// Start closes both when it returns.
type Server struct {
	router   *chi.Mux
	config   config.Server
	logger   *slog.Logger
	db       *sqliteRepo.DB
	limiter  *middleware.RateLimiter
	registry *prometheus.Registry
}

// New opens the database and wires every route.
//
// generator may be nil. The server still starts and
// POST /api/recommendations/{user_id} answers 503.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with
// the modernc.org/sqlite driver.
func New(cfg config.Server, logger *slog.Logger, generator recommend.Generator) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: reg,
	}

	s.setupRoutes(metrics.NewCollector(reg), generator)
	return s, nil
}

// setupRoutes mounts middleware and routes.
//
// ROUTES:
//
//	GET    /                                      liveness
//	GET    /healthz                               liveness + database ping
//	GET    /metrics                               Prometheus
//	POST   /api/auth/register
//	POST   /api/auth/login?user_id=
//	POST   /api/users
//	GET    /api/users/{user_id}
//	PUT    /api/users/{user_id}
//	DELETE /api/users/{user_id}
//	POST   /api/diary/{user_id}
//	GET    /api/diary/{user_id}?limit=
//	POST   /api/recommendations/{user_id}         rate limited per user
//	GET    /api/recommendations/{user_id}/history?limit=
//
// MIDDLEWARE ORDER:
// RequestID comes first so every later layer can log it. The logger wraps
// Recoverer, so a recovered panic is still logged as a 500. CORS sits inside
// the logger, so preflights are logged too.
func (s *Server) setupRoutes(collector *metrics.Collector, generator recommend.Generator) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger, collector))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.CORSAllowedOrigin))

	s.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: s.config.RecommendPerMinute,
		Burst:     s.config.RecommendBurst,
	}, collector, s.logger)

	authService := service.NewAuthService(s.db, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	diaryService := service.NewDiaryService(s.db, s.db, s.logger)
	recService := service.NewRecommendationService(s.db, s.db, s.db, generator, collector, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	diaryHandler := handler.NewDiaryHandler(diaryService, s.logger)
	recHandler := handler.NewRecommendationHandler(recService, s.logger)

	s.router.Get("/", handler.HandleRoot)
	s.router.Get("/healthz", handler.HandleHealth(s.db))
	s.router.Handle("/metrics", metrics.Handler(s.registry))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Post("/users", userHandler.HandleCreate)
		r.Get("/users/{user_id}", userHandler.HandleGet)
		r.Put("/users/{user_id}", userHandler.HandleUpdate)
		r.Delete("/users/{user_id}", userHandler.HandleDelete)

		r.Post("/diary/{user_id}", diaryHandler.HandleAdd)
		r.Get("/diary/{user_id}", diaryHandler.HandleList)

		r.With(s.limiter.Middleware).Post("/recommendations/{user_id}", recHandler.HandleGenerate)
		r.Get("/recommendations/{user_id}/history", recHandler.HandleHistory)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the rate limiter and the database. Start calls it itself.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM or ctx is cancelled, then shuts down.
//
// GRACEFUL SHUTDOWN:
//  1. stop accepting connections
//  2. wait up to ShutdownTimeout for in-flight requests (a recommendation
//     can take tens of seconds)
//  3. close the database so the WAL is checkpointed
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	// WriteTimeout leaves room for a slow model answer.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d/api", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown requested")
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
