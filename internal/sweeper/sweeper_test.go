// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package sweeper

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/models"
	"github.com/tomtom215/locbeacon/internal/registry"
)

//nolint:gochecknoinits // keep test output quiet
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LocationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.LocationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) snapshot() []models.LocationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.LocationEvent(nil), p.events...)
}

func upsert(t *testing.T, r registry.Registry, userID string) {
	t.Helper()
	_, err := r.Upsert(context.Background(), models.LocationReport{UserID: userID, Latitude: 12.97, Longitude: 77.59})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNew_Defaults(t *testing.T) {
	reg := registry.NewMemoryRegistry(registry.Options{TTL: 2 * time.Minute})
	s := New(reg, nil, Config{})

	if s.config.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", s.config.Interval, DefaultInterval)
	}
	if s.config.TTL != 2*time.Minute {
		t.Errorf("TTL = %v, want the registry TTL", s.config.TTL)
	}
}

func TestSweeper_RunNow(t *testing.T) {
	clock := newFakeClock()
	reg := registry.NewMemoryRegistry(registry.Options{Clock: clock.Now})
	pub := &recordingPublisher{}
	s := New(reg, pub, Config{TTL: 5 * time.Minute})

	upsert(t, reg, "old")
	clock.Advance(4 * time.Minute)
	upsert(t, reg, "fresh")
	clock.Advance(2 * time.Minute)

	evicted, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(evicted) != 1 || evicted[0] != "old" {
		t.Fatalf("evicted = %v, want [old]", evicted)
	}

	remaining, err := reg.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].UserID != "fresh" {
		t.Errorf("remaining = %+v, want only fresh", remaining)
	}

	events := pub.snapshot()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type != models.EventLocationEvicted || events[0].UserID != "old" {
		t.Errorf("event = %+v", events[0])
	}
	if !events[0].OccurredAt.Equal(clock.Now()) {
		t.Errorf("OccurredAt = %v, want sweep time %v", events[0].OccurredAt, clock.Now())
	}

	stats := s.GetStats()
	if stats.LastEvicted != 1 || stats.TotalEvicted != 1 || stats.LastError != nil {
		t.Errorf("stats = %+v", stats)
	}
}

// Write, advance six minutes, sweep, read is empty.
func TestSweeper_EvictsAfterSixMinutes(t *testing.T) {
	clock := newFakeClock()
	reg := registry.NewInstrumented(registry.NewMemoryRegistry(registry.Options{Clock: clock.Now}))
	s := New(reg, nil, Config{})

	upsert(t, reg, "u1")
	clock.Advance(6 * time.Minute)

	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	n, err := reg.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestSweeper_PublishFailureDoesNotFailSweep(t *testing.T) {
	clock := newFakeClock()
	reg := registry.NewMemoryRegistry(registry.Options{Clock: clock.Now})
	s := New(reg, &recordingPublisher{err: errors.New("bus closed")}, Config{})

	upsert(t, reg, "u1")
	clock.Advance(10 * time.Minute)

	evicted, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow() = %v", err)
	}
	if len(evicted) != 1 {
		t.Errorf("evicted = %v", evicted)
	}
}

type failingRegistry struct {
	registry.Registry
}

func (failingRegistry) EvictStale(context.Context, time.Time, time.Duration) ([]string, error) {
	return nil, errors.New("disk on fire")
}

func TestSweeper_RegistryError(t *testing.T) {
	reg := failingRegistry{registry.NewMemoryRegistry(registry.Options{})}
	pub := &recordingPublisher{}
	s := New(reg, pub, Config{})

	if _, err := s.RunNow(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.snapshot()) != 0 {
		t.Error("no events should be published for a failed sweep")
	}
	if s.GetStats().LastError == nil {
		t.Error("LastError should be recorded")
	}
}

func TestSweeper_BadgerBackend(t *testing.T) {
	clock := newFakeClock()
	reg, err := registry.OpenBadgerRegistry(t.TempDir(), registry.Options{Clock: clock.Now})
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	s := New(reg, nil, Config{})
	upsert(t, reg, "u1")
	clock.Advance(6 * time.Minute)

	evicted, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(evicted) != 1 {
		t.Errorf("evicted = %v, want [u1]", evicted)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	clock := newFakeClock()
	reg := registry.NewMemoryRegistry(registry.Options{Clock: clock.Now})
	pub := &recordingPublisher{}
	s := New(reg, pub, Config{Interval: 10 * time.Millisecond})

	upsert(t, reg, "u1")
	clock.Advance(6 * time.Minute)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Errorf("second Start = %v, want nil", err)
	}
	if !s.IsRunning() {
		t.Error("sweeper should be running")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(pub.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("background sweep never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if s.IsRunning() {
		t.Error("sweeper should be stopped")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop = %v, want nil", err)
	}
}
