package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//
//	{"error": "not_found", "message": "GitHub user not found: octocat"}
//
// The frontend maps the machine-readable kind to one of its three display
// categories (github / ai / network) — so the kind strings here are part of
// the public contract, not just log decoration.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/resumegit/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error kind (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body — once Encode starts
// writing, the headers are already on the wire.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it.
//
// ERROR MAPPING:
// The service layer returns apperror sentinels; this is the single place
// they become HTTP statuses. The mapping:
//
//	validation      → 400 (caller's fault, never retried)
//	not found       → 404 (unknown GitHub account)
//	rate limited    → 429 (GitHub quota exhausted)
//	timeout         → 504 (model call exceeded its budget)
//	upstream        → 500 (any other non-2xx from GitHub)
//	configuration   → 500 (missing generation credential)
//	generation      → 500 (any other model failure)
//
// errors.As walks the wrap chain (services add context with fmt.Errorf
// "...: %w") and extracts the AppError for its human-readable message.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrRateLimited):
			status = http.StatusTooManyRequests
			errorType = "rate_limited"
		case errors.Is(err, apperror.ErrTimeout):
			status = http.StatusGatewayTimeout
			errorType = "timeout"
		case errors.Is(err, apperror.ErrUpstream):
			errorType = "upstream_error"
		case errors.Is(err, apperror.ErrConfiguration):
			errorType = "configuration_error"
		case errors.Is(err, apperror.ErrGeneration):
			errorType = "generation_error"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — return a generic 500. Never expose internal error
	// details to the client; the raw message might carry URLs or tokens.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
