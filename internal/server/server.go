// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where every
// dependency is assembled in one place:
//
//	config → github.Client → ActivityService → GitHubHandler
//	config → CompletionClient → GeneratorService → GenerateHandler
//
// Each layer only receives what it needs: services get the external clients
// (as interfaces), handlers get the services (as interfaces) plus the shared
// cache. Nothing here holds state beyond the router itself.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/resumegit/internal/cache"
	"github.com/sakif/resumegit/internal/config"
	"github.com/sakif/resumegit/internal/github"
	"github.com/sakif/resumegit/internal/handler"
	"github.com/sakif/resumegit/internal/middleware"
	"github.com/sakif/resumegit/internal/service"
)

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
}

// New creates a Server with its full dependency chain wired up.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /api/health            → liveness probe
//	GET  /api/github/{username} → aggregated activity summary (JSON)
//	POST /api/generate          → resume bullets for a summary (JSON)
//
// MIDDLEWARE ORDER MATTERS — middleware executes in the order it's added:
// RequestID assigns an ID for tracing, RealIP unwraps proxy headers, CORS
// answers preflights before any handler runs, our Logger times the request,
// and Recoverer turns panics into 500s instead of crashing the process.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// DEPENDENCY CHAIN:
	// The GitHub client and the LLM client are the only pieces that touch
	// the network. The two handlers share one cache so summaries and bullet
	// lists age out together.
	githubClient := github.NewClient(s.config.GitHubToken)
	activityService := service.NewActivityService(githubClient, s.logger)

	completionClient := service.NewCompletionClient(s.config.LLMBaseURL, s.config.LLMAPIKey)
	generatorService := service.NewGeneratorService(completionClient, s.config.LLMModel, s.logger)

	responseCache := cache.New(s.config.CacheTTL)

	githubHandler := handler.NewGitHubHandler(activityService, responseCache, s.logger)
	generateHandler := handler.NewGenerateHandler(generatorService, responseCache, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HandleHealth)
		r.Get("/github/{username}", githubHandler.HandleGetActivity)
		r.Post("/generate", generateHandler.HandleGenerate)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// On SIGINT/SIGTERM we stop accepting new connections and give in-flight
// requests 30 seconds to finish. An aggregation mid-fan-out simply runs to
// completion inside that window; there is no cancellation propagation beyond
// the request context.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// Generation can legitimately take close to a minute, so the write
		// timeout must sit above the 60s model budget.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("githubTokenConfigured", s.config.GitHubToken != ""),
			slog.Bool("llmKeyConfigured", s.config.LLMAPIKey != ""),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
