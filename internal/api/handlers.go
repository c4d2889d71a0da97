// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package api

import (
	"context"
	"time"

	"github.com/tomtom215/locbeacon/internal/config"
	"github.com/tomtom215/locbeacon/internal/models"
	"github.com/tomtom215/locbeacon/internal/registry"
	ws "github.com/tomtom215/locbeacon/internal/websocket"
)

// EventPublisher puts location events on the in-process bus.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LocationEvent) error
}

// Handler serves the HTTP API.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_locations.go: report writes and reads
//   - handlers_health.go: health, liveness and readiness probes
//   - handlers_websocket.go: WebSocket upgrade
type Handler struct {
	registry  registry.Registry
	publisher EventPublisher
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a handler over reg. cfg may be nil in tests.
func NewHandler(reg registry.Registry, cfg *config.Config) *Handler {
	return &Handler{
		registry:  reg,
		config:    cfg,
		startTime: time.Now(),
	}
}

// SetEventPublisher publishes every accepted write to p. nil disables it.
func (h *Handler) SetEventPublisher(p EventPublisher) {
	h.publisher = p
}

// SetWebSocketHub enables the /ws endpoint. Without a hub /ws returns 503.
func (h *Handler) SetWebSocketHub(hub *ws.Hub) {
	h.wsHub = hub
}
