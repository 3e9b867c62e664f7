// Package main is the entry point for the resumegit server.
//
// The main package is kept minimal — its job is to:
// 1. Set up logging
// 2. Load configuration from the environment
// 3. Create and start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, internal/service, ...). This separation keeps the app
// testable and main boring.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/resumegit/internal/config"
	"github.com/sakif/resumegit/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	// slog.NewTextHandler outputs human-readable structured logs to stdout.
	// LOG_LEVEL=debug turns on the cache-hit and degraded-fetch noise that
	// is useful when poking at the aggregation pipeline locally.
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// === 2. LOAD CONFIGURATION ===
	// config.Load merges a local .env file with real environment variables.
	// A missing LLM key is NOT fatal here — the GitHub side of the API works
	// without it, and the generate endpoint reports the missing credential
	// per-request instead.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.GitHubToken == "" {
		logger.Warn("GITHUB_TOKEN not set — unauthenticated GitHub rate limits apply (60 requests/hour)")
	}
	if cfg.LLMAPIKey == "" {
		logger.Warn("LLM_API_KEY not set — /api/generate will return configuration errors")
	}

	// === 3. CREATE AND START THE SERVER ===
	srv := server.New(cfg, logger)

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
