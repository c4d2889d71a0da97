// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Location Report Metrics
	LocationReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_reports_total",
			Help: "Total number of location reports by outcome",
		},
		[]string{"result"}, // accepted, invalid, malformed, too_large, error
	)

	// Registry Metrics
	RegistryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_entries",
			Help: "Number of location entries currently retained",
		},
	)

	RegistryOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registry_operation_duration_seconds",
			Help:    "Duration of registry operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"operation", "backend"},
	)

	RegistryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_errors_total",
			Help: "Total number of failed registry operations",
		},
		[]string{"operation", "backend"},
	)

	RegistryEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_evictions_total",
			Help: "Total number of stale entries evicted",
		},
	)

	SweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Total number of eviction sweeps",
		},
		[]string{"result"}, // success, failure
	)

	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_last_success_timestamp",
			Help: "Unix timestamp of the last successful sweep",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of location events published",
		},
		[]string{"sink", "topic", "result"}, // sink: bus, nats
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts one request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// Location report outcomes.
const (
	ReportAccepted  = "accepted"
	ReportInvalid   = "invalid"
	ReportMalformed = "malformed"
	ReportTooLarge  = "too_large"
	ReportError     = "error"
)

// RecordLocationReport counts one write request by outcome.
func RecordLocationReport(result string) {
	LocationReportsTotal.WithLabelValues(result).Inc()
}

// RecordRegistryOperation records latency and failures of a registry call.
func RecordRegistryOperation(operation, backend string, duration time.Duration, err error) {
	RegistryOperationDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
	if err != nil {
		RegistryErrors.WithLabelValues(operation, backend).Inc()
	}
}

// SetRegistryEntries updates the retained entry gauge.
func SetRegistryEntries(count int) {
	RegistryEntries.Set(float64(count))
}

// RecordSweep records the outcome of one eviction sweep.
func RecordSweep(evicted int, err error) {
	if err != nil {
		SweepRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	SweepRunsTotal.WithLabelValues("success").Inc()
	RegistryEvictionsTotal.Add(float64(evicted))
	SweepLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordEventPublish counts a publish attempt to sink ("bus" or "nats").
func RecordEventPublish(sink, topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublished.WithLabelValues(sink, topic, result).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change. States use
// gobreaker's names: closed, half-open, open.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
