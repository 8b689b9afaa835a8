package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "script not found with id abc123"}
//
// This makes it easy for the frontend to parse errors — it always knows
// what fields to expect, regardless of whether it's a 400, 404, or 502.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/scriptgenie/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
// Remaining is only present on rate-limit responses.
type ErrorResponse struct {
	Error     string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message   string `json:"message"` // Human-readable description
	Remaining *int   `json:"remaining,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
// Any header changes after that are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails, the headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// This is where domain errors (from the service layer) get translated to HTTP.
// The service layer should not know about HTTP status codes — it returns
// apperror sentinels and this function maps them:
//
//	ErrValidation      → 400   (caller's input is wrong)
//	ErrUnauthorized    → 401   (missing/invalid credential)
//	ErrPaymentRequired → 402   (gateway credits exhausted, relayed)
//	ErrForbidden       → 403   (valid credential, wrong owner)
//	ErrNotFound        → 404
//	ErrConflict        → 409
//	ErrRateLimited     → 429   (guest ceiling or gateway 429, relayed)
//	ErrUpstream        → 502   (gateway/TTS failed or answered garbage)
//
// errors.Is() walks the entire chain (via Unwrap()), so services can wrap
// freely with fmt.Errorf("...: %w", err) without breaking the mapping.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrPaymentRequired):
			status = http.StatusPaymentRequired
			errorType = "payment_required"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrRateLimited):
			status = http.StatusTooManyRequests
			errorType = "rate_limited"
		case errors.Is(err, apperror.ErrUpstream):
			status = http.StatusBadGateway
			errorType = "upstream_error"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — return a generic 500.
	// NEVER expose internal error details to the client: the raw message
	// might contain SQL queries, file paths, or other sensitive info.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
