package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clearbooks/reconcile-backend/internal/api/handlers"
	"github.com/clearbooks/reconcile-backend/internal/api/middleware"
	"github.com/clearbooks/reconcile-backend/internal/application/service"
	"github.com/clearbooks/reconcile-backend/internal/domain/matcher"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	APIToken       string // empty = auth disabled
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config          Config
	router          chi.Router
	httpServer      *http.Server
	logger          *slog.Logger
	reconcileSvc    *service.ReconcileService
	matchingOptions matcher.Options
}

// NewServer creates a new API server. matchingOptions are the deployment
// defaults applied when a request does not override them.
func NewServer(cfg Config, svc *service.ReconcileService, matchingOptions matcher.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:          cfg,
		router:          chi.NewRouter(),
		logger:          logger,
		reconcileSvc:    svc,
		matchingOptions: matchingOptions,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix, no auth - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.reconcileSvc)
	s.router.Get("/health", healthHandler.ServeHTTP)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(s.config.APIToken))

		reconcileHandler := handlers.NewReconcileHandler(s.reconcileSvc, s.matchingOptions)
		r.Post("/reconcile", reconcileHandler.Reconcile)

		sessionsHandler := handlers.NewSessionsHandler(s.reconcileSvc)
		r.Get("/sessions", sessionsHandler.List)
		r.Get("/sessions/{id}", sessionsHandler.Get)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
