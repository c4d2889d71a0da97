// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/locbeacon/internal/config"
	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	maxBodyBytes  int64
}

// NewRouter creates a router for handler. cfg may be nil in tests.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	maxBody := middleware.DefaultMaxBodyBytes
	if cfg != nil && cfg.Server.MaxBodyBytes > 0 {
		maxBody = cfg.Server.MaxBodyBytes
	}
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(cfg)),
		maxBodyBytes:  maxBody,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to every route, outermost first.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ReasonNotFound, newAPIError(ErrCodeNotFound, "no such route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "method not allowed",
			newAPIError("METHOD_NOT_ALLOWED", req.Method+" is not supported on this route"))
	})

	r.Get("/health", router.handler.Health)
	r.Get("/health/live", router.handler.HealthLive)
	r.Get("/health/ready", router.handler.HealthReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", router.handler.WebSocket)

	// Writes
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.MaxBodySize(router.maxBodyBytes))

		r.Post("/report", router.handler.Report)
		r.Post("/api/share-location", router.handler.Report)
		r.Post("/api/v1/locations", router.handler.Report)
	})

	// Reads
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/api/latest-location", router.handler.Locations)
		r.Get("/api/v1/locations", router.handler.Locations)
		r.Get("/api/v1/locations/{userId}", router.handler.Location)
	})

	logging.Debug().Int64("max_body_bytes", router.maxBodyBytes).
		Bool("rate_limit", router.chiMiddleware.config.RateLimitEnabled).
		Msg("HTTP routes configured")

	return r
}
