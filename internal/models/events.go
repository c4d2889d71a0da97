// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package models

import "time"

// Location event types, also used as WebSocket message types.
const (
	EventLocationUpdated = "location_updated"
	EventLocationEvicted = "location_evicted"
)

// LocationEvent describes a registry change pushed to subscribers.
// Report is set for updates and nil for evictions.
type LocationEvent struct {
	Type       string          `json:"type"`
	UserID     string          `json:"userId"`
	Report     *LocationReport `json:"report,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// NewLocationUpdatedEvent builds an update event from a stored report.
func NewLocationUpdatedEvent(report *LocationReport) LocationEvent {
	c := report.Clone()
	return LocationEvent{
		Type:       EventLocationUpdated,
		UserID:     report.UserID,
		Report:     &c,
		OccurredAt: report.ReceivedAt,
	}
}

// NewLocationEvictedEvent builds an eviction event.
func NewLocationEvictedEvent(userID string, at time.Time) LocationEvent {
	return LocationEvent{
		Type:       EventLocationEvicted,
		UserID:     userID,
		OccurredAt: at,
	}
}
