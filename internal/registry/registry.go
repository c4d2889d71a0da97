// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package registry holds the latest location per user and ages entries out.
//
// Two backends implement Registry: an in-memory map guarded by a
// sync.RWMutex (the default) and a BadgerDB store that keeps entries across
// restarts. Both stamp ReceivedAt from an injectable clock, hide stale
// entries from reads even before the sweep removes them, and only ever hand
// out copies.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/locbeacon/internal/models"
)

var (
	// ErrInvalidReport is returned by Upsert for a report without a user id
	// or with non-finite coordinates. The registry is left unchanged.
	ErrInvalidReport = errors.New("invalid location report")

	// ErrNotFound is returned by Get when no fresh entry exists.
	ErrNotFound = errors.New("location not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("registry closed")
)

// DefaultTTL is the staleness threshold used when Options.TTL is zero.
const DefaultTTL = 5 * time.Minute

// Clock returns the current time. Tests inject a fake.
type Clock func() time.Time

// Registry maps user ids to their most recent location report.
type Registry interface {
	// Upsert replaces the entry for report.UserID, stamping ReceivedAt with
	// the registry clock, and returns the stored copy.
	Upsert(ctx context.Context, report models.LocationReport) (models.LocationReport, error)

	// Get returns the fresh entry for userID or ErrNotFound.
	Get(ctx context.Context, userID string) (models.LocationReport, error)

	// List returns every fresh entry sorted by user id.
	List(ctx context.Context) ([]models.LocationReport, error)

	// EvictStale removes entries received before now-ttl and returns the
	// evicted user ids in sorted order.
	EvictStale(ctx context.Context, now time.Time, ttl time.Duration) ([]string, error)

	// Delete removes the entry for userID and reports whether one existed.
	Delete(ctx context.Context, userID string) (bool, error)

	// Count returns the number of retained entries, stale or not.
	Count(ctx context.Context) (int, error)

	// TTL returns the staleness threshold applied by reads.
	TTL() time.Duration

	// Now returns the registry clock's current time.
	Now() time.Time

	// Backend names the storage backend.
	Backend() string

	Close() error
}

// Options configures a registry.
type Options struct {
	TTL   time.Duration
	Clock Clock
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// validateReport checks the fields the registry depends on.
func validateReport(r *models.LocationReport) error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidReport)
	}
	if !r.HasValidCoordinates() {
		return fmt.Errorf("%w: latitude and longitude must be finite numbers", ErrInvalidReport)
	}
	return nil
}

func sortReports(reports []models.LocationReport) {
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].UserID < reports[j].UserID
	})
}
