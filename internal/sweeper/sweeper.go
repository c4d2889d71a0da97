// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/locbeacon/internal/logging"
	"github.com/tomtom215/locbeacon/internal/metrics"
	"github.com/tomtom215/locbeacon/internal/models"
	"github.com/tomtom215/locbeacon/internal/registry"
)

// Default sweep settings.
const (
	DefaultInterval = 60 * time.Second
	DefaultTTL      = registry.DefaultTTL
)

// EventPublisher receives one eviction event per removed user.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LocationEvent) error
}

// Config controls the sweep cadence and staleness threshold.
type Config struct {
	Interval time.Duration
	// TTL of zero uses the registry's TTL.
	TTL time.Duration
}

// Sweeper periodically evicts stale locations from a registry.
type Sweeper struct {
	registry  registry.Registry
	publisher EventPublisher
	config    Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	running      bool
	lastRun      time.Time
	lastEvicted  int
	totalEvicted int64
	lastErr      error
}

// New creates a sweeper. publisher may be nil.
func New(reg registry.Registry, publisher EventPublisher, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.TTL <= 0 {
		cfg.TTL = reg.TTL()
	}
	return &Sweeper{
		registry:  reg,
		publisher: publisher,
		config:    cfg,
	}
}

// Start begins the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	logging.Info().
		Dur("interval", s.config.Interval).
		Dur("ttl", s.config.TTL).
		Str("backend", s.registry.Backend()).
		Msg("location sweeper started")
	return nil
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	logging.Info().Msg("location sweeper stopped")
	return nil
}

// IsRunning reports whether the loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.sweep(s.ctx)
		}
	}
}

// RunNow performs one sweep immediately and returns the evicted user ids.
func (s *Sweeper) RunNow(ctx context.Context) ([]string, error) {
	return s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) ([]string, error) {
	start := time.Now()
	now := s.registry.Now()

	evicted, err := s.registry.EvictStale(ctx, now, s.config.TTL)
	metrics.RecordSweep(len(evicted), err)

	s.mu.Lock()
	s.lastRun = now
	s.lastErr = err
	if err == nil {
		s.lastEvicted = len(evicted)
		s.totalEvicted += int64(len(evicted))
	}
	s.mu.Unlock()

	if err != nil {
		logging.Error().Err(err).Msg("location sweep failed")
		return nil, err
	}

	for _, userID := range evicted {
		s.publishEviction(ctx, userID, now)
	}

	if gc, ok := s.registry.(registry.GarbageCollector); ok && len(evicted) > 0 {
		if gcErr := gc.RunGC(); gcErr != nil {
			logging.Warn().Err(gcErr).Msg("registry garbage collection failed")
		}
	}

	if len(evicted) > 0 {
		logging.Info().
			Int("evicted", len(evicted)).
			Dur("duration", time.Since(start)).
			Msg("evicted stale locations")
	} else {
		logging.Debug().Dur("duration", time.Since(start)).Msg("location sweep found nothing stale")
	}

	return evicted, nil
}

func (s *Sweeper) publishEviction(ctx context.Context, userID string, at time.Time) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, models.NewLocationEvictedEvent(userID, at)); err != nil {
		logging.Warn().Err(err).Str("user_id", logging.SanitizeValue(userID)).Msg("failed to publish eviction event")
	}
}

// Stats describes recent sweeper activity.
type Stats struct {
	LastRun      time.Time
	LastEvicted  int
	TotalEvicted int64
	LastError    error
}

// GetStats returns sweep statistics.
func (s *Sweeper) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		LastRun:      s.lastRun,
		LastEvicted:  s.lastEvicted,
		TotalEvicted: s.totalEvicted,
		LastError:    s.lastErr,
	}
}
