// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package apm

import (
	"sync"
	"time"
)

// Ledger is a bounded, time-ordered buffer of activity tick
// timestamps. Ticks older than the window are evicted on every read,
// so the ledger never grows beyond one window of activity.
//
// Ledger is safe for concurrent use: the sampler appends while the
// snapshot recorder reads.
type Ledger struct {
	window time.Duration

	mu    sync.Mutex
	ticks []time.Time
}

// NewLedger returns a Ledger counting ticks over the trailing window.
func NewLedger(window time.Duration) *Ledger {
	return &Ledger{window: window}
}

// RecordTick appends one activity tick. Ticks must be appended in
// non-decreasing timestamp order (the sampler is the only writer and
// always stamps with the current time).
func (l *Ledger) RecordTick(t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticks = append(l.ticks, t)
}

// Count evicts every tick older than now - window and returns the
// number remaining. A tick at exactly now - window survives. Eviction
// and counting happen under one lock acquisition, so no tick is
// counted after eviction or lost to a concurrent RecordTick.
func (l *Ledger) Count(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	evict := 0
	for evict < len(l.ticks) && l.ticks[evict].Before(cutoff) {
		evict++
	}
	if evict > 0 {
		l.ticks = append(l.ticks[:0], l.ticks[evict:]...)
	}
	return len(l.ticks)
}
