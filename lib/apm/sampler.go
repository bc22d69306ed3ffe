// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package apm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/focuslog/focuslog/lib/clock"
)

// IdleFunc reads the user's current input idle time in milliseconds.
// The second return value is false when the reading is unavailable.
type IdleFunc func(ctx context.Context) (int64, bool)

// SamplerConfig holds the parameters for creating a Sampler.
type SamplerConfig struct {
	// PollInterval is how often the idle timer is read. Required.
	PollInterval time.Duration

	// Idle reads the current idle time. Required.
	Idle IdleFunc

	// Ledger receives one tick per poll in which input occurred.
	// Required.
	Ledger *Ledger

	// Clock provides time for the poll loop. Required.
	Clock clock.Clock

	// Logger receives operational messages. Required.
	Logger *slog.Logger
}

// Sampler converts idle-time readings into discrete activity ticks.
// When the idle timer grew by less than a full poll interval between
// two reads, input must have occurred in between, and one tick is
// recorded. This infers "activity happened" without raw input hooks.
type Sampler struct {
	pollInterval time.Duration
	idle         IdleFunc
	ledger       *Ledger
	clock        clock.Clock
	logger       *slog.Logger
}

// NewSampler validates the config and returns a Sampler.
func NewSampler(cfg SamplerConfig) (*Sampler, error) {
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("apm sampler: PollInterval must be positive")
	}
	if cfg.Idle == nil {
		return nil, fmt.Errorf("apm sampler: Idle is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("apm sampler: Ledger is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("apm sampler: Clock is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("apm sampler: Logger is required")
	}
	return &Sampler{
		pollInterval: cfg.PollInterval,
		idle:         cfg.Idle,
		ledger:       cfg.Ledger,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}, nil
}

// Run polls the idle timer until ctx is cancelled. A failed idle read
// skips the cycle without mutating the previous reading, so the next
// successful read compares against the last trustworthy baseline.
func (s *Sampler) Run(ctx context.Context) {
	s.logger.Info("apm sampler started", "poll_interval", s.pollInterval)

	pollMillis := s.pollInterval.Milliseconds()
	ticker := s.clock.NewTicker(s.pollInterval)
	defer ticker.Stop()

	// Seed the baseline so the first poll compares against a real
	// reading instead of zero.
	var previous int64
	if initial, ok := s.idle(ctx); ok {
		previous = initial
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("apm sampler stopped")
			return
		case <-ticker.C:
			current, ok := s.idle(ctx)
			if !ok {
				continue
			}
			// Idle time that didn't grow by a full poll interval
			// means the idle timer was reset by input since the
			// previous read.
			if current < previous+pollMillis {
				s.ledger.RecordTick(s.clock.Now())
			}
			previous = current
		}
	}
}
