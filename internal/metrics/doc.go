// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package metrics defines the Prometheus metrics exported on /metrics.
//
// Metrics are registered on the default registry through promauto at package
// init, so importing the package is enough to expose them.
//
// # Metric Families
//
//   - api_*: request counts, latency, in-flight requests, rate limit hits
//   - location_reports_total: write requests by outcome
//   - registry_*: retained entries, operation latency and errors, evictions
//   - sweep_*: eviction sweep runs and last success time
//   - websocket_*: connected clients, messages sent, errors
//   - events_published_total: bus and NATS publishes
//   - circuit_breaker_*: NATS publish breaker state
//
// # Example Queries
//
//	# Share of rejected location reports
//	sum(rate(location_reports_total{result!="accepted"}[5m]))
//	  / sum(rate(location_reports_total[5m]))
//
//	# Active users
//	registry_entries
package metrics
