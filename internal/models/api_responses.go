// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package models

// Response bodies keep the "ok" flag shape that existing viewer and tracker
// pages already parse.
//
// Example write acknowledgement:
//
//	{"ok": true, "timestamp": "2026-01-02T15:04:05Z", "received": {...}}
//
// Example failure:
//
//	{
//	  "ok": false,
//	  "reason": "invalid payload",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "latitude must be a number",
//	    "details": {"field": "latitude"},
//	    "request_id": "6f1c..."
//	  }
//	}

// ReportAck acknowledges an accepted location report.
type ReportAck struct {
	OK        bool            `json:"ok"`
	Timestamp string          `json:"timestamp"`
	Received  *LocationReport `json:"received,omitempty"`
}

// LocationList is the bulk read response.
type LocationList struct {
	OK        bool             `json:"ok"`
	Users     []LocationReport `json:"users"`
	Count     int              `json:"count"`
	Timestamp string           `json:"timestamp"`
}

// LocationDetail is the point read response.
type LocationDetail struct {
	OK   bool           `json:"ok"`
	User LocationReport `json:"user"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	OK            bool    `json:"ok"`
	Status        string  `json:"status,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds,omitempty"`
	Entries       *int    `json:"entries,omitempty"`
	Backend       string  `json:"backend,omitempty"`
	WSClients     *int    `json:"websocket_clients,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	OK     bool      `json:"ok"`
	Reason string    `json:"reason"`
	Error  *APIError `json:"error,omitempty"`
}

// APIError carries a machine-readable code alongside the human message.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}
