// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package services

import (
	"context"
	"fmt"
)

// SweeperManager is satisfied by *sweeper.Sweeper.
type SweeperManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SweeperService adapts the sweeper's Start/Stop lifecycle to suture.
type SweeperService struct {
	manager SweeperManager
	name    string
}

// NewSweeperService wraps manager.
func NewSweeperService(manager SweeperManager) *SweeperService {
	return &SweeperService{
		manager: manager,
		name:    "location-sweeper",
	}
}

// Serve starts the sweeper, waits for cancellation, then stops it.
func (s *SweeperService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sweeper start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sweeper stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *SweeperService) String() string {
	return s.name
}
