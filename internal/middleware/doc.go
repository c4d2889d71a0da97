// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

/*
Package middleware provides HTTP middleware shared by every route.

All middleware uses the chi signature func(http.Handler) http.Handler:

  - RequestID: honours an inbound X-Request-ID or generates a UUID, echoes it
    in the response and stores it in the logging context
  - PrometheusMetrics: request counter, latency histogram and in-flight gauge,
    labelled by chi route pattern so path parameters do not explode label
    cardinality
  - AccessLog: one debug line per request through zerolog
  - MaxBodySize: caps request bodies with http.MaxBytesReader

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
	r.With(middleware.MaxBodySize(64 << 10)).Post("/report", h.Report)
*/
package middleware
