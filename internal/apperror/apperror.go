package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrRateLimited   = errors.New("rate limited")
	ErrUpstream      = errors.New("upstream error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrGeneration    = errors.New("generation error")
)

type AppError struct {
	Err     error  // sentinel identifying the error kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// RateLimited indicates the upstream API refused the request because the
// quota is exhausted. HTTP handlers map this to 429 Too Many Requests.
func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}

// Upstream wraps any other non-2xx response from an external API.
func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}

// Configuration indicates a required credential or setting is missing.
// Always the operator's fault, never the caller's.
func Configuration(message string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: message,
	}
}

// Timeout indicates an external call exceeded its time budget.
// HTTP handlers map this to 504 Gateway Timeout.
func Timeout(message string) *AppError {
	return &AppError{
		Err:     ErrTimeout,
		Message: message,
	}
}

// Generation wraps any other failure from the text-generation endpoint.
func Generation(message string) *AppError {
	return &AppError{
		Err:     ErrGeneration,
		Message: message,
	}
}
