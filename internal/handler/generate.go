package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/resumegit/internal/apperror"
	"github.com/sakif/resumegit/internal/cache"
	"github.com/sakif/resumegit/internal/model"
)

// BulletGenerator is what this handler needs from the service layer.
type BulletGenerator interface {
	Generate(ctx context.Context, data *model.ActivitySummary, mode model.Mode) ([]model.ResumeBullet, error)
}

// GenerateHandler turns an activity summary into resume bullets.
type GenerateHandler struct {
	generator BulletGenerator
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(generator BulletGenerator, c *cache.Cache, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		cache:     c,
		logger:    logger,
	}
}

// generateRequest is the expected request body. Mode is optional and
// defaults to "standard".
type generateRequest struct {
	GitHubData *model.ActivitySummary `json:"githubData"`
	Mode       model.Mode             `json:"mode"`
}

// HandleGenerate produces resume bullets for a previously-fetched summary.
//
// HTTP: POST /api/generate
// Body: {"githubData": <ActivitySummary>, "mode": "standard|technical|impact|entry"}
//
// Responses: 200 with {success, bullets, mode, username, generatedAt};
// 400 missing data or invalid mode; 500 missing credential or generation
// failure; 504 model timeout. Results are cached per (username, mode) with
// the same TTL as summaries — bullet lists are only ever replaced wholesale,
// so serving a cached list is indistinguishable from regenerating it.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid generate request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Request body must be valid JSON"))
		return
	}

	if req.GitHubData == nil || req.GitHubData.Username == "" {
		writeError(w, apperror.ValidationFailed("githubData", "GitHub data is required"))
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = model.ModeStandard
	}
	if !mode.Valid() {
		writeError(w, apperror.ValidationFailed("mode", "Mode must be one of: standard, technical, impact, entry"))
		return
	}

	cacheKey := "bullets:" + strings.ToLower(req.GitHubData.Username) + ":" + string(mode)
	if cached, ok := h.cache.Get(cacheKey); ok {
		h.logger.Debug("cache hit",
			slog.String("username", req.GitHubData.Username),
			slog.String("mode", string(mode)),
		)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	h.logger.Info("generating resume bullets",
		slog.String("username", req.GitHubData.Username),
		slog.String("mode", string(mode)),
	)
	bullets, err := h.generator.Generate(r.Context(), req.GitHubData, mode)
	if err != nil {
		h.logger.Error("generation failed",
			slog.String("username", req.GitHubData.Username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	resp := model.GenerateResponse{
		Success:     true,
		Bullets:     bullets,
		Mode:        mode,
		Username:    req.GitHubData.Username,
		GeneratedAt: time.Now().UTC(),
	}
	h.cache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}
