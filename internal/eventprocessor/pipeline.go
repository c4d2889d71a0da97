// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
)

// Pipeline routes bus events to the WebSocket hub and, when configured, to
// an external forwarder. Each Run builds a fresh Watermill router, so a
// supervisor can restart it after a failure.
type Pipeline struct {
	bus     *Bus
	cfg     RouterConfig
	logger  watermill.LoggerAdapter
	ws      *WebSocketHandler
	forward *ForwardHandler
	running atomic.Bool
}

// NewPipeline creates a pipeline reading from bus. Attach sinks with
// WithWebSocket and WithForwarder before calling Run.
func NewPipeline(bus *Bus, cfg RouterConfig, logger watermill.LoggerAdapter) *Pipeline {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Pipeline{bus: bus, cfg: cfg, logger: logger}
}

// WithWebSocket broadcasts every event to hub.
func (p *Pipeline) WithWebSocket(hub WebSocketBroadcaster) (*Pipeline, error) {
	h, err := NewWebSocketHandler(hub, p.logger)
	if err != nil {
		return nil, err
	}
	p.ws = h
	return p, nil
}

// WithForwarder copies every event to f.
func (p *Pipeline) WithForwarder(f EventForwarder) (*Pipeline, error) {
	h, err := NewForwardHandler(f, p.logger)
	if err != nil {
		return nil, err
	}
	p.forward = h
	return p, nil
}

// Run subscribes the configured sinks and blocks until ctx is canceled.
func (p *Pipeline) Run(ctx context.Context) error {
	router, err := NewRouter(&p.cfg, p.logger)
	if err != nil {
		return err
	}

	topics := []string{TopicLocationUpdated, TopicLocationEvicted}
	for _, topic := range topics {
		if p.ws != nil {
			router.AddConsumerHandler("websocket."+topic, topic, p.bus.Subscriber(), p.ws.Handle)
		}
		if p.forward != nil {
			router.AddConsumerHandler("forward."+topic, topic, p.bus.Subscriber(), p.forward.Handle)
		}
	}

	if router.HandlerCount() == 0 {
		p.running.Store(true)
		defer p.running.Store(false)
		<-ctx.Done()
		return ctx.Err()
	}

	go func() {
		select {
		case <-router.Running():
			p.running.Store(true)
		case <-ctx.Done():
		}
	}()
	defer p.running.Store(false)

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// IsRunning reports whether every handler is subscribed.
func (p *Pipeline) IsRunning() bool {
	return p.running.Load()
}

// Stats returns per-sink handler counters keyed by sink name.
func (p *Pipeline) Stats() map[string]HandlerStats {
	stats := make(map[string]HandlerStats, 2)
	if p.ws != nil {
		stats["websocket"] = p.ws.Stats()
	}
	if p.forward != nil {
		stats["forward"] = p.forward.Stats()
	}
	return stats
}
