// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/locbeacon/internal/logging"
)

// NATSServer is satisfied by *eventprocessor.EmbeddedServer.
type NATSServer interface {
	ClientURL() string
	Shutdown(ctx context.Context) error
}

// NATSServerStarter starts a fresh embedded server.
type NATSServerStarter func() (NATSServer, error)

// NATSServerService keeps an embedded NATS server running. Each Serve
// starts a new server, so a crashed server is replaced on restart.
type NATSServerService struct {
	start           NATSServerStarter
	shutdownTimeout time.Duration
	name            string
}

// NewNATSServerService wraps start.
func NewNATSServerService(start NATSServerStarter, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		start:           start,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-server",
	}
}

// Serve implements suture.Service.
func (n *NATSServerService) Serve(ctx context.Context) error {
	srv, err := n.start()
	if err != nil {
		return fmt.Errorf("embedded NATS start failed: %w", err)
	}
	logging.Info().Str("url", srv.ClientURL()).Msg("embedded NATS server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), n.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("embedded NATS shutdown failed: %w", err)
	}
	return ctx.Err()
}

func (n *NATSServerService) String() string {
	return n.name
}
