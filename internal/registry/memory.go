// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/locbeacon/internal/models"
)

// MemoryRegistry keeps entries in a map. All access goes through mu, so
// readers never observe a partially written entry.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]models.LocationReport
	closed  bool

	ttl   time.Duration
	clock Clock
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry(opts Options) *MemoryRegistry {
	opts = opts.withDefaults()
	return &MemoryRegistry{
		entries: make(map[string]models.LocationReport),
		ttl:     opts.TTL,
		clock:   opts.Clock,
	}
}

// Upsert stores a copy of report under its user id.
func (r *MemoryRegistry) Upsert(_ context.Context, report models.LocationReport) (models.LocationReport, error) {
	if err := validateReport(&report); err != nil {
		return models.LocationReport{}, err
	}

	stored := report.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return models.LocationReport{}, ErrClosed
	}

	stored.ReceivedAt = r.clock()
	r.entries[stored.UserID] = stored
	return stored.Clone(), nil
}

// Get returns the fresh entry for userID.
func (r *MemoryRegistry) Get(_ context.Context, userID string) (models.LocationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return models.LocationReport{}, ErrClosed
	}

	entry, ok := r.entries[userID]
	if !ok || entry.IsStale(r.clock(), r.ttl) {
		return models.LocationReport{}, ErrNotFound
	}
	return entry.Clone(), nil
}

// List returns copies of every fresh entry.
func (r *MemoryRegistry) List(_ context.Context) ([]models.LocationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrClosed
	}

	now := r.clock()
	out := make([]models.LocationReport, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.IsStale(now, r.ttl) {
			continue
		}
		out = append(out, entry.Clone())
	}
	sortReports(out)
	return out, nil
}

// EvictStale deletes every entry received before now-ttl.
func (r *MemoryRegistry) EvictStale(_ context.Context, now time.Time, ttl time.Duration) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	var evicted []string
	for id, entry := range r.entries {
		if entry.IsStale(now, ttl) {
			delete(r.entries, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted, nil
}

// Delete removes the entry for userID.
func (r *MemoryRegistry) Delete(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, ErrClosed
	}

	_, ok := r.entries[userID]
	delete(r.entries, userID)
	return ok, nil
}

// Count returns the number of retained entries.
func (r *MemoryRegistry) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return 0, ErrClosed
	}
	return len(r.entries), nil
}

// TTL returns the read staleness threshold.
func (r *MemoryRegistry) TTL() time.Duration { return r.ttl }

// Now returns the registry clock time.
func (r *MemoryRegistry) Now() time.Time { return r.clock() }

// Backend returns "memory".
func (r *MemoryRegistry) Backend() string { return "memory" }

// Close drops all entries. Further calls return ErrClosed.
func (r *MemoryRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.entries = nil
	return nil
}

var _ Registry = (*MemoryRegistry)(nil)
