// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/focuslog/focuslog/lib/apm"
	"github.com/focuslog/focuslog/lib/clock"
	"github.com/focuslog/focuslog/lib/title"
)

// fallbackTitle is recorded when no window is focused or the title
// probe fails mid-cycle.
const fallbackTitle = "Desktop"

// recorderConfig holds the parameters for creating a recorder.
type recorderConfig struct {
	// Store receives one snapshot per cycle. Required.
	Store *Store

	// ScreenLocked reports whether the session is lock-detected as
	// away. Required.
	ScreenLocked func(ctx context.Context) bool

	// WindowTitle reads the focused window's title. The second return
	// is false when no title is available. Required.
	WindowTitle func(ctx context.Context) (string, bool)

	// Ledger provides the APM count for active snapshots. Required.
	Ledger *apm.Ledger

	// Sanitizer cleans raw titles before storage. Required.
	Sanitizer *title.Sanitizer

	// Interval is the snapshot cadence. Required.
	Interval time.Duration

	// Retention is how far back rows are kept; each cycle prunes rows
	// older than now minus Retention. Required.
	Retention time.Duration

	// Clock provides time for the loop. Required.
	Clock clock.Clock

	// Logger receives cycle errors. Required.
	Logger *slog.Logger
}

// recorder writes one activity snapshot per interval and prunes
// expired rows in the same transaction. A failing cycle is logged and
// skipped; the loop itself only stops with the context.
type recorder struct {
	store        *Store
	screenLocked func(ctx context.Context) bool
	windowTitle  func(ctx context.Context) (string, bool)
	ledger       *apm.Ledger
	sanitizer    *title.Sanitizer
	interval     time.Duration
	retention    time.Duration
	clock        clock.Clock
	logger       *slog.Logger
}

func newRecorder(cfg recorderConfig) (*recorder, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("recorder: Store is required")
	}
	if cfg.ScreenLocked == nil {
		return nil, fmt.Errorf("recorder: ScreenLocked is required")
	}
	if cfg.WindowTitle == nil {
		return nil, fmt.Errorf("recorder: WindowTitle is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("recorder: Ledger is required")
	}
	if cfg.Sanitizer == nil {
		return nil, fmt.Errorf("recorder: Sanitizer is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("recorder: Interval must be positive")
	}
	if cfg.Retention <= 0 {
		return nil, fmt.Errorf("recorder: Retention must be positive")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("recorder: Clock is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("recorder: Logger is required")
	}
	return &recorder{
		store:        cfg.Store,
		screenLocked: cfg.ScreenLocked,
		windowTitle:  cfg.WindowTitle,
		ledger:       cfg.Ledger,
		sanitizer:    cfg.Sanitizer,
		interval:     cfg.Interval,
		retention:    cfg.Retention,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}, nil
}

// Run records snapshots until ctx is cancelled.
func (r *recorder) Run(ctx context.Context) {
	r.logger.Info("snapshot recorder started",
		"interval", r.interval,
		"retention", r.retention,
	)
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("snapshot recorder stopped")
			return
		case <-ticker.C:
			if err := r.recordOnce(ctx); err != nil {
				r.logger.Error("snapshot cycle failed", "error", err)
			}
		}
	}
}

// recordOnce captures and persists a single snapshot.
func (r *recorder) recordOnce(ctx context.Context) error {
	now := r.clock.Now()
	snap := r.capture(ctx, now)
	return r.store.RecordAndPrune(ctx, snap, now.Add(-r.retention))
}

// capture observes the current desktop state. A locked screen records
// the away sentinel with zero APM and skips the ledger and title
// probes entirely.
func (r *recorder) capture(ctx context.Context, now time.Time) Snapshot {
	if r.screenLocked(ctx) {
		return Snapshot{Timestamp: now, Title: afkSentinel, APM: 0}
	}

	raw, ok := r.windowTitle(ctx)
	if !ok || raw == "" {
		raw = fallbackTitle
	}
	return Snapshot{
		Timestamp: now,
		Title:     r.sanitizer.Sanitize(raw),
		APM:       r.ledger.Count(now),
	}
}
