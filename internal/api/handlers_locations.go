// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/metrics"
	"github.com/tomtom215/locbeacon/internal/models"
	"github.com/tomtom215/locbeacon/internal/registry"
	"github.com/tomtom215/locbeacon/internal/validation"
)

// Report accepts one location sample and replaces the sender's entry.
//
// Served on POST /report, /api/share-location and /api/v1/locations.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			metrics.RecordLocationReport(metrics.ReportTooLarge)
			respondError(w, r, http.StatusRequestEntityTooLarge, ReasonPayloadTooLarge,
				newAPIError(ErrCodePayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)))
			return
		}
		metrics.RecordLocationReport(metrics.ReportMalformed)
		respondError(w, r, http.StatusBadRequest, ReasonInvalidPayload,
			newAPIError(validation.CodeInvalidJSON, "request body could not be read"))
		return
	}

	report, err := validation.DecodeLocationReport(body)
	if err != nil {
		h.rejectReport(w, r, err)
		return
	}

	stored, err := h.registry.Upsert(r.Context(), report)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidReport) {
			metrics.RecordLocationReport(metrics.ReportInvalid)
			respondError(w, r, http.StatusBadRequest, ReasonInvalidPayload,
				newAPIError(validation.CodeValidation, err.Error()))
			return
		}
		metrics.RecordLocationReport(metrics.ReportError)
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to store location report")
		respondError(w, r, http.StatusInternalServerError, ReasonInternalError,
			newAPIError(ErrCodeInternalError, "location could not be stored"))
		return
	}

	metrics.RecordLocationReport(metrics.ReportAccepted)
	logAcceptedReport(r.Context(), &stored)
	h.publishUpdate(r.Context(), &stored)

	respondJSON(w, http.StatusOK, &models.ReportAck{
		OK:        true,
		Timestamp: serverTimestamp(stored.ReceivedAt),
		Received:  &stored,
	})
}

// rejectReport maps a decode failure to a 400 response.
func (h *Handler) rejectReport(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		metrics.RecordLocationReport(metrics.ReportInvalid)
		logging.Ctx(r.Context()).Debug().Str("error", logging.SanitizeValue(verr.Error())).Msg("Rejected location report")
		respondError(w, r, http.StatusBadRequest, ReasonInvalidPayload, verr.ToAPIError())
		return
	}

	metrics.RecordLocationReport(metrics.ReportMalformed)
	logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected malformed location report")
	respondError(w, r, http.StatusBadRequest, ReasonInvalidPayload,
		newAPIError(validation.CodeInvalidJSON, "request body must be a JSON object"))
}

func logAcceptedReport(ctx context.Context, report *models.LocationReport) {
	event := logging.Ctx(ctx).Debug().
		Str("user_id", logging.SanitizeValue(report.UserID)).
		Str("user_name", logging.SanitizeUserName(report.UserName)).
		Str("lat", fmt.Sprintf("%.6f", report.Latitude)).
		Str("lng", fmt.Sprintf("%.6f", report.Longitude))
	if report.Accuracy != nil {
		event = event.Float64("accuracy", *report.Accuracy)
	}
	if report.Speed != nil {
		event = event.Float64("speed", *report.Speed)
	}
	event.Msg("Location report accepted")
}

// publishUpdate puts the stored report on the bus. Failures are logged and
// never fail the write.
func (h *Handler) publishUpdate(ctx context.Context, report *models.LocationReport) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, models.NewLocationUpdatedEvent(report)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", logging.SanitizeValue(report.UserID)).
			Msg("Failed to publish location update")
	}
}

// Locations returns every fresh location sorted by user id.
//
// Served on GET /api/latest-location and /api/v1/locations.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	reports, err := h.registry.List(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list locations")
		respondError(w, r, http.StatusInternalServerError, ReasonInternalError,
			newAPIError(ErrCodeInternalError, "locations could not be read"))
		return
	}
	if reports == nil {
		reports = []models.LocationReport{}
	}

	respondJSON(w, http.StatusOK, &models.LocationList{
		OK:        true,
		Users:     reports,
		Count:     len(reports),
		Timestamp: serverTimestamp(h.registry.Now()),
	})
}

// Location returns one user's fresh location.
//
// Served on GET /api/v1/locations/{userId}.
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ReasonInvalidPayload,
			newAPIError(validation.CodeValidation, "userId is required"))
		return
	}

	report, err := h.registry.Get(r.Context(), userID)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ReasonNotFound,
			newAPIError(ErrCodeNotFound, "no current location for user"))
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to read location")
		respondError(w, r, http.StatusInternalServerError, ReasonInternalError,
			newAPIError(ErrCodeInternalError, "location could not be read"))
		return
	}

	respondJSON(w, http.StatusOK, &models.LocationDetail{OK: true, User: report})
}
