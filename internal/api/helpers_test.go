// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locbeacon/internal/config"
	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/models"
	"github.com/tomtom215/locbeacon/internal/registry"
)

//nolint:gochecknoinits // keep test output quiet
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: baseTime} }

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

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LocationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.LocationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []models.LocationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.LocationEvent(nil), p.events...)
}

// failingRegistry fails every storage call.
type failingRegistry struct {
	registry.Registry
	err error
}

func (f *failingRegistry) Upsert(context.Context, models.LocationReport) (models.LocationReport, error) {
	return models.LocationReport{}, f.err
}

func (f *failingRegistry) Get(context.Context, string) (models.LocationReport, error) {
	return models.LocationReport{}, f.err
}

func (f *failingRegistry) List(context.Context) ([]models.LocationReport, error) {
	return nil, f.err
}

func (f *failingRegistry) Count(context.Context) (int, error) {
	return 0, f.err
}

func (f *failingRegistry) Now() time.Time { return baseTime }

func newFailingRegistry() *failingRegistry {
	return &failingRegistry{
		Registry: registry.NewMemoryRegistry(registry.Options{}),
		err:      errors.New("disk on fire"),
	}
}

type testServer struct {
	handler   *Handler
	registry  registry.Registry
	clock     *fakeClock
	publisher *recordingPublisher
	mux       http.Handler
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	clock := newFakeClock()
	reg := registry.NewMemoryRegistry(registry.Options{TTL: 5 * time.Minute, Clock: clock.Now})
	t.Cleanup(func() { _ = reg.Close() })
	return newTestServerWithRegistry(t, reg, clock, cfg)
}

func newTestServerWithRegistry(t *testing.T, reg registry.Registry, clock *fakeClock, cfg *config.Config) *testServer {
	t.Helper()
	pub := &recordingPublisher{}
	h := NewHandler(reg, cfg)
	h.SetEventPublisher(pub)
	return &testServer{
		handler:   h,
		registry:  reg,
		clock:     clock,
		publisher: pub,
		mux:       NewRouter(h, cfg).SetupChi(),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func (s *testServer) list(t *testing.T) models.LocationList {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/latest-location", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk read status = %d, body %s", rec.Code, rec.Body.String())
	}
	var list models.LocationList
	decodeBody(t, rec, &list)
	return list
}

// panickingRegistry panics on List to exercise panic recovery.
type panickingRegistry struct {
	registry.Registry
}

func (panickingRegistry) List(context.Context) ([]models.LocationReport, error) {
	panic("registry exploded")
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}
