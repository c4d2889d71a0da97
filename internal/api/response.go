// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/models"
)

// Failure reasons. Existing tracker pages match on these strings.
const (
	ReasonInvalidPayload  = "invalid payload"
	ReasonPayloadTooLarge = "payload too large"
	ReasonNotFound        = "not found"
	ReasonInternalError   = "internal error"
	ReasonUnavailable     = "service unavailable"
	ReasonRateLimited     = "rate limited"
)

// Error codes beyond the validation package's.
const (
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
)

// serverTimestamp formats the response timestamp.
func serverTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// respondJSON writes v as JSON. Responses describe live state and are never
// cacheable.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes a failure body. The request ID from the context is
// attached to apiErr.
func respondError(w http.ResponseWriter, r *http.Request, status int, reason string, apiErr *models.APIError) {
	if apiErr != nil {
		apiErr.RequestID = logging.RequestIDFromContext(r.Context())
	}
	respondJSON(w, status, &models.ErrorResponse{
		OK:     false,
		Reason: reason,
		Error:  apiErr,
	})
}

func newAPIError(code, message string) *models.APIError {
	return &models.APIError{Code: code, Message: message}
}
