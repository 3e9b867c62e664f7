package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sakif/resumegit/internal/apperror"
	"github.com/sakif/resumegit/internal/model"
)

// generationTimeout is the budget for one model call. Exceeding it surfaces
// as a timeout error, which handlers map to 504.
const generationTimeout = 60 * time.Second

// CompletionClient is the slice of the OpenAI-compatible client the generator
// depends on. go-openai's *openai.Client satisfies it; tests use a mock.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GeneratorService turns an ActivitySummary into categorised resume bullets
// by prompting a text-generation model and parsing its free-text reply.
type GeneratorService struct {
	client  CompletionClient // nil when no API key is configured
	model   string
	logger  *slog.Logger
	timeout time.Duration
}

// NewGeneratorService creates a GeneratorService. Pass a nil client when no
// generation credential is configured — the missing credential is reported at
// generation time (as the API contract requires), not at startup.
func NewGeneratorService(client CompletionClient, modelName string, logger *slog.Logger) *GeneratorService {
	return &GeneratorService{
		client:  client,
		model:   modelName,
		logger:  logger,
		timeout: generationTimeout,
	}
}

// NewCompletionClient builds the real go-openai client for an
// OpenAI-compatible endpoint. Returns nil when apiKey is empty.
func NewCompletionClient(baseURL, apiKey string) CompletionClient {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg)
}

// Generate produces resume bullets for the given activity summary and mode.
//
// The model is asked for exactly 8 bullets as a JSON array, but its output
// carries no schema guarantee. Malformed output never surfaces as an error:
// parsing degrades through a line-extraction fallback, and at absolute worst
// the result is an empty list. The only errors are a missing credential,
// a timeout, and upstream call failures.
func (s *GeneratorService) Generate(ctx context.Context, data *model.ActivitySummary, mode model.Mode) ([]model.ResumeBullet, error) {
	if s.client == nil {
		return nil, apperror.Configuration("LLM API key is not configured")
	}

	prompt := buildPrompt(data, mode)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// Low temperature: we want faithful restatements of the commit data,
		// not creative writing.
		Temperature: 0.2,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.Timeout("AI is taking longer than expected. Please try again.")
		}
		return nil, apperror.Generation(fmt.Sprintf("failed to generate resume bullets: %v", err))
	}
	if len(resp.Choices) == 0 {
		return nil, apperror.Generation("model returned no choices")
	}

	bullets := s.parseBullets(resp.Choices[0].Message.Content)
	s.logger.Info("generated resume bullets",
		slog.String("username", data.Username),
		slog.String("mode", string(mode)),
		slog.Int("bullets", len(bullets)),
	)
	return bullets, nil
}

// parseBullets parses the model's reply into bullets, best-effort.
//
// Happy path: strip optional code fences, parse a JSON array, coerce each
// element. Coercion never drops an element for a bad category or confidence —
// those default to Feature/medium; only empty text (including non-object
// array elements, which have no text to extract) drops an element.
// Only a reply that isn't a JSON array at all falls back to line extraction.
func (s *GeneratorService) parseBullets(raw string) []model.ResumeBullet {
	cleaned := stripCodeFences(raw)

	// Decode the array first, the elements second: a stray non-object
	// element must not throw away an otherwise valid array.
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		s.logger.Warn("model reply is not a JSON array, using fallback extractor",
			slog.String("error", err.Error()),
		)
		return extractBulletsFromText(raw)
	}

	bullets := make([]model.ResumeBullet, 0, len(elements))
	for _, element := range elements {
		var item map[string]any
		if err := json.Unmarshal(element, &item); err != nil {
			continue
		}
		text, _ := item["text"].(string)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		category := model.CategoryFeature
		if c, ok := item["category"].(string); ok && model.Category(c).Valid() {
			category = model.Category(c)
		}

		confidence := model.ConfidenceMedium
		if c, ok := item["confidence"].(string); ok && model.Confidence(c).Valid() {
			confidence = model.Confidence(c)
		}

		tech := []string{}
		if list, ok := item["tech"].([]any); ok {
			for _, v := range list {
				tech = append(tech, fmt.Sprint(v))
			}
		}

		bullets = append(bullets, model.ResumeBullet{
			ID:         xid.New().String(),
			Text:       text,
			Category:   category,
			Tech:       tech,
			Confidence: confidence,
		})
	}
	return bullets
}

// stripCodeFences removes markdown code fences that some models wrap around
// JSON despite being told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove opening fence (```json or ```)
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		// Remove closing fence
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

var (
	bulletMarker  = regexp.MustCompile(`^[-•*]\s*`)
	leadingQuote  = regexp.MustCompile(`^"\s*`)
	trailingQuote = regexp.MustCompile(`"\s*$`)
)

// extractBulletsFromText is the degrade path for replies that aren't JSON:
// keep lines long enough to plausibly be bullets, skip anything that looks
// like JSON punctuation, strip list markers and stray quotes, and wrap up to
// 8 of them as Feature/medium bullets. A heuristic, not a contract — the
// worst case is an empty list, never an error.
func extractBulletsFromText(text string) []model.ResumeBullet {
	bullets := make([]model.ResumeBullet, 0, 8)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 20 || strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
			continue
		}

		line = bulletMarker.ReplaceAllString(line, "")
		line = leadingQuote.ReplaceAllString(line, "")
		line = trailingQuote.ReplaceAllString(line, "")

		bullets = append(bullets, model.ResumeBullet{
			ID:         xid.New().String(),
			Text:       line,
			Category:   model.CategoryFeature,
			Tech:       []string{},
			Confidence: model.ConfidenceMedium,
		})
		if len(bullets) == 8 {
			break
		}
	}
	return bullets
}
