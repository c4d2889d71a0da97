// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package registry

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/locbeacon/internal/metrics"
	"github.com/tomtom215/locbeacon/internal/models"
)

// Instrumented wraps a Registry with Prometheus latency and error metrics
// and refreshes the registry_entries gauge after each eviction sweep. Writes
// leave the gauge alone because Count scans every key on Badger.
type Instrumented struct {
	Registry
}

// NewInstrumented wraps inner.
func NewInstrumented(inner Registry) *Instrumented {
	return &Instrumented{Registry: inner}
}

// Unwrap returns the wrapped registry.
func (r *Instrumented) Unwrap() Registry {
	return r.Registry
}

func (r *Instrumented) record(op string, start time.Time, err error) {
	// Validation failures and misses are caller errors, not backend faults.
	if errors.Is(err, ErrInvalidReport) || errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordRegistryOperation(op, r.Backend(), time.Since(start), err)
}

func (r *Instrumented) refreshEntries(ctx context.Context) {
	if n, err := r.Registry.Count(ctx); err == nil {
		metrics.SetRegistryEntries(n)
	}
}

// Upsert records metrics around the wrapped Upsert.
func (r *Instrumented) Upsert(ctx context.Context, report models.LocationReport) (models.LocationReport, error) {
	start := time.Now()
	stored, err := r.Registry.Upsert(ctx, report)
	r.record("upsert", start, err)
	return stored, err
}

// Get records metrics around the wrapped Get.
func (r *Instrumented) Get(ctx context.Context, userID string) (models.LocationReport, error) {
	start := time.Now()
	report, err := r.Registry.Get(ctx, userID)
	r.record("get", start, err)
	return report, err
}

// List records metrics around the wrapped List.
func (r *Instrumented) List(ctx context.Context) ([]models.LocationReport, error) {
	start := time.Now()
	reports, err := r.Registry.List(ctx)
	r.record("list", start, err)
	return reports, err
}

// EvictStale records metrics around the wrapped EvictStale.
func (r *Instrumented) EvictStale(ctx context.Context, now time.Time, ttl time.Duration) ([]string, error) {
	start := time.Now()
	evicted, err := r.Registry.EvictStale(ctx, now, ttl)
	r.record("evict", start, err)
	r.refreshEntries(ctx)
	return evicted, err
}

// Delete records metrics around the wrapped Delete.
func (r *Instrumented) Delete(ctx context.Context, userID string) (bool, error) {
	start := time.Now()
	existed, err := r.Registry.Delete(ctx, userID)
	r.record("delete", start, err)
	return existed, err
}

// Count records metrics around the wrapped Count and updates the entry gauge
// with the result.
func (r *Instrumented) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.Registry.Count(ctx)
	r.record("count", start, err)
	if err == nil {
		metrics.SetRegistryEntries(n)
	}
	return n, err
}

// GarbageCollector is implemented by backends that can reclaim disk space.
type GarbageCollector interface {
	RunGC() error
}

// RunGC forwards to the wrapped registry when it supports garbage collection.
func (r *Instrumented) RunGC() error {
	if gc, ok := r.Registry.(GarbageCollector); ok {
		return gc.RunGC()
	}
	return nil
}

var (
	_ Registry         = (*Instrumented)(nil)
	_ GarbageCollector = (*Instrumented)(nil)
	_ GarbageCollector = (*BadgerRegistry)(nil)
)
