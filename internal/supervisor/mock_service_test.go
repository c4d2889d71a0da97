// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService fails a configurable number of times, then runs until
// canceled.
type mockService struct {
	name       string
	starts     atomic.Int32
	stops      atomic.Int32
	failures   atomic.Int32
	failBudget int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	defer m.stops.Add(1)

	if m.failures.Add(1) <= m.failBudget {
		return errors.New("simulated failure")
	}

	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
