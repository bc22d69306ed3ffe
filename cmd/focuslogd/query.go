// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/focuslog/focuslog/lib/clock"
	"github.com/focuslog/focuslog/lib/redact"
)

// querier answers activity-log requests: it loads the snapshot range,
// resolves privacy labels for every distinct title, and renders the
// compressed timeline.
type querier struct {
	store            *Store
	resolver         *redact.Resolver
	clock            clock.Clock
	retentionHours   int
	snapshotInterval time.Duration
	minBlockFraction float64
	logger           *slog.Logger
}

// ActivityLog renders the activity timeline for the last hoursAgo
// hours. hoursAgo is clamped to [1, retention]: values below 1 behave
// as 1, values beyond retention return everything that is still
// stored. The returned text goes to the caller verbatim; errors are
// reserved for storage failures.
func (q *querier) ActivityLog(ctx context.Context, hoursAgo int) (string, error) {
	hoursAgo = min(max(hoursAgo, 1), q.retentionHours)
	now := q.clock.Now()
	since := now.Add(-time.Duration(hoursAgo) * time.Hour)

	q.logger.Info("activity log requested", "hours_ago", hoursAgo)

	snapshots, err := q.store.SnapshotsSince(ctx, since)
	if err != nil {
		q.logger.Error("activity log query failed", "error", err)
		return "", errors.New("could not retrieve data from the activity log")
	}
	if len(snapshots) == 0 {
		return fmt.Sprintf("No activity recorded in the last %d hour(s).", hoursAgo), nil
	}

	labels := q.resolver.ResolveAll(ctx, distinctTitles(snapshots))
	blocks := compressTimeline(snapshots, labels, now)

	minDuration := time.Duration(q.minBlockFraction * float64(q.snapshotInterval))

	var out strings.Builder
	fmt.Fprintf(&out, "Timeline of focused windows & AFK status (last %dh):\n", hoursAgo)
	for _, block := range blocks {
		if block.Duration < minDuration {
			continue
		}
		start := block.Start.Format("15:04")
		duration := formatDurationCompact(block.Duration)
		if block.AFK {
			fmt.Fprintf(&out, "%s (%s): %s\n", start, duration, block.Label)
		} else {
			fmt.Fprintf(&out, "%s (%s): (Avg APM: %d) %s\n", start, duration, block.AvgAPM, block.Label)
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// distinctTitles returns the unique non-sentinel titles across the
// snapshots, in first-seen order. The sentinel is excluded because it
// is never redacted.
func distinctTitles(snapshots []Snapshot) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, snap := range snapshots {
		if snap.Title == "" || snap.Title == afkSentinel || seen[snap.Title] {
			continue
		}
		seen[snap.Title] = true
		titles = append(titles, snap.Title)
	}
	return titles
}
