package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/resumegit/internal/apperror"
	"github.com/sakif/resumegit/internal/cache"
	"github.com/sakif/resumegit/internal/model"
)

// ActivityAggregator is what this handler needs from the service layer.
// Taking the interface (not *service.ActivityService) keeps the handler
// testable with a hand-written mock.
type ActivityAggregator interface {
	Aggregate(ctx context.Context, username string) (*model.ActivitySummary, error)
}

// GitHubHandler serves aggregated GitHub activity summaries.
type GitHubHandler struct {
	aggregator ActivityAggregator
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewGitHubHandler creates a GitHubHandler.
func NewGitHubHandler(aggregator ActivityAggregator, c *cache.Cache, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{
		aggregator: aggregator,
		cache:      c,
		logger:     logger,
	}
}

// HandleGetActivity returns the activity summary for one GitHub user.
//
// HTTP: GET /api/github/{username}
//
// Responses: 200 with the ActivitySummary JSON; 400 invalid username;
// 404 unknown account; 429 GitHub rate limit; 500 other upstream failure.
// Summaries are cached for an hour keyed by the lower-cased username, so a
// mode change on the client never re-fetches GitHub.
func (h *GitHubHandler) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !ValidUsername(username) {
		writeError(w, apperror.ValidationFailed("username", "Please provide a valid GitHub username"))
		return
	}

	cacheKey := "github:" + strings.ToLower(username)
	if cached, ok := h.cache.Get(cacheKey); ok {
		h.logger.Debug("cache hit", slog.String("username", username))
		writeJSON(w, http.StatusOK, cached)
		return
	}

	h.logger.Info("fetching GitHub activity", slog.String("username", username))
	summary, err := h.aggregator.Aggregate(r.Context(), username)
	if err != nil {
		h.logger.Error("aggregation failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	h.cache.Set(cacheKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

// ValidUsername reports whether s is a well-formed GitHub username:
// 1–39 characters, alphanumeric or hyphen, starting and ending with an
// alphanumeric, with no consecutive hyphens.
//
// GitHub's own rule is usually written as the regex
// ^[a-zA-Z0-9](?:[a-zA-Z0-9]|-(?!-)){0,38}$ — but Go's regexp (RE2) has no
// lookahead, so an explicit scan is both clearer and faster here.
func ValidUsername(s string) bool {
	if len(s) == 0 || len(s) > 39 {
		return false
	}
	prevHyphen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			prevHyphen = false
		case c == '-':
			// No leading, trailing, or doubled hyphens.
			if i == 0 || i == len(s)-1 || prevHyphen {
				return false
			}
			prevHyphen = true
		default:
			return false
		}
	}
	return true
}
