// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/models"
)

// Health answers {"ok":true} while the process serves requests.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.HealthStatus{OK: true})
}

// HealthLive is the liveness probe. It never checks dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.HealthStatus{
		OK:            true,
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe: 200 when the registry answers,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	count, err := h.registry.Count(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		respondError(w, r, http.StatusServiceUnavailable, ReasonUnavailable,
			newAPIError(ErrCodeServiceUnavailable, "registry unavailable"))
		return
	}

	status := &models.HealthStatus{
		OK:            true,
		Status:        "ready",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Entries:       &count,
		Backend:       h.registry.Backend(),
	}
	if h.wsHub != nil {
		clients := h.wsHub.GetClientCount()
		status.WSClients = &clients
	}
	respondJSON(w, http.StatusOK, status)
}
