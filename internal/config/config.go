// Package config loads runtime configuration from the environment.
//
// A .env file in the working directory is merged in first (convenient for
// local development); real environment variables always win. Missing optional
// values fall back to sensible defaults. The one credential this service
// can't run usefully without — the LLM API key — is deliberately NOT checked
// here: the API contract says its absence is a generation-time error, so the
// server must still start and serve GitHub summaries without it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment.
type Config struct {
	Port int

	// GitHubToken is optional. Unauthenticated GitHub calls are capped at
	// 60/hour per IP; a token raises that to 5000/hour.
	GitHubToken string

	// LLM settings. Any OpenAI-compatible endpoint works.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// CacheTTL bounds how long summaries and bullet lists are reused.
	CacheTTL time.Duration

	// AllowedOrigins feeds the CORS middleware. "*" during development.
	AllowedOrigins []string
}

// Load reads configuration from .env and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           8080,
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		CacheTTL:       time.Hour,
		AllowedOrigins: []string{"*"},
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}

	if ttlStr := os.Getenv("CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL value %q: %w", ttlStr, err)
		}
		cfg.CacheTTL = ttl
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}
