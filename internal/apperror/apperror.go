package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimited     = errors.New("rate limited")
	ErrPaymentRequired = errors.New("payment required")

	// ErrUpstream marks failures of the AI gateway / TTS calls: transport
	// errors, non-2xx statuses we don't translate more specifically, and
	// model output that fails strict parsing. Kept distinct from plain
	// internal errors so handlers can answer 502 instead of 500.
	ErrUpstream = errors.New("upstream error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for requests missing a valid credential
// on an endpoint that mandates one. Handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// RateLimited is returned both by the local guest limiter (with a message
// steering the caller to sign in) and when the AI gateway answers 429.
// Handlers map this to 429.
func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}

// PaymentRequired relays the gateway's 402 (workspace credits exhausted).
func PaymentRequired(message string) *AppError {
	return &AppError{
		Err:     ErrPaymentRequired,
		Message: message,
	}
}

// Upstream wraps a gateway/TTS failure. Handlers map this to 502.
func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}
