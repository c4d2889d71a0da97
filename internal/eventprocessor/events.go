// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locbeacon/internal/models"
)

// Bus topics.
const (
	TopicLocationUpdated = "location.updated"
	TopicLocationEvicted = "location.evicted"
)

// Message metadata keys.
const (
	MetadataEventType = "event_type"
	MetadataUserID    = "user_id"
)

// ErrInvalidEvent is returned for events that cannot be published.
var ErrInvalidEvent = errors.New("invalid location event")

// TopicFor returns the bus topic for an event type.
func TopicFor(eventType string) (string, error) {
	switch eventType {
	case models.EventLocationUpdated:
		return TopicLocationUpdated, nil
	case models.EventLocationEvicted:
		return TopicLocationEvicted, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, eventType)
	}
}

// ValidateEvent checks that an event carries what its type requires.
func ValidateEvent(event *models.LocationEvent) error {
	if _, err := TopicFor(event.Type); err != nil {
		return err
	}
	if event.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidEvent)
	}
	if event.Type == models.EventLocationUpdated && event.Report == nil {
		return fmt.Errorf("%w: update without report", ErrInvalidEvent)
	}
	return nil
}

// SerializeEvent validates and encodes an event.
func SerializeEvent(event *models.LocationEvent) ([]byte, error) {
	if err := ValidateEvent(event); err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DeserializeEvent decodes and validates an event.
func DeserializeEvent(data []byte) (*models.LocationEvent, error) {
	var event models.LocationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := ValidateEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// evictedPayload is what viewers receive when a user disappears.
type evictedPayload struct {
	UserID    string    `json:"userId"`
	EvictedAt time.Time `json:"evictedAt"`
}

// ViewerPayload encodes the data part of the frame sent to viewers: the
// stored report for updates, the user id and eviction time for evictions.
func ViewerPayload(event *models.LocationEvent) ([]byte, error) {
	switch event.Type {
	case models.EventLocationUpdated:
		return json.Marshal(event.Report)
	case models.EventLocationEvicted:
		return json.Marshal(evictedPayload{UserID: event.UserID, EvictedAt: event.OccurredAt})
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, event.Type)
	}
}
