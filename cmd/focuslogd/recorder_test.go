// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/focuslog/focuslog/lib/apm"
	"github.com/focuslog/focuslog/lib/clock"
	"github.com/focuslog/focuslog/lib/title"
)

func newTestRecorder(t *testing.T, store *Store, fakeClock *clock.FakeClock, locked *bool, windowTitle string) (*recorder, *apm.Ledger) {
	t.Helper()
	ledger := apm.NewLedger(time.Minute)
	rec, err := newRecorder(recorderConfig{
		Store:        store,
		ScreenLocked: func(context.Context) bool { return *locked },
		WindowTitle: func(context.Context) (string, bool) {
			return windowTitle, windowTitle != ""
		},
		Ledger:    ledger,
		Sanitizer: title.NewSanitizer(nil, nil, 80),
		Interval:  time.Minute,
		Retention: time.Hour,
		Clock:     fakeClock,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("newRecorder: %v", err)
	}
	return rec, ledger
}

func TestRecordOnceActive(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	fakeClock := clock.Fake(testEpoch)
	locked := false
	rec, ledger := newTestRecorder(t, store, fakeClock, &locked, "main.go - Editor")

	ledger.RecordTick(testEpoch.Add(-time.Second))
	ledger.RecordTick(testEpoch.Add(-2 * time.Second))

	if err := rec.recordOnce(ctx); err != nil {
		t.Fatalf("recordOnce: %v", err)
	}
	rows, err := store.SnapshotsSince(ctx, testEpoch)
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Title != "main.go - Editor" || rows[0].APM != 2 {
		t.Errorf("row = %+v, want title main.go - Editor with apm 2", rows[0])
	}
}

func TestRecordOnceLockedWritesSentinel(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	fakeClock := clock.Fake(testEpoch)
	locked := true
	rec, ledger := newTestRecorder(t, store, fakeClock, &locked, "main.go - Editor")

	// Ticks in the window must be ignored while locked.
	ledger.RecordTick(testEpoch.Add(-time.Second))

	if err := rec.recordOnce(ctx); err != nil {
		t.Fatalf("recordOnce: %v", err)
	}
	rows, err := store.SnapshotsSince(ctx, testEpoch)
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Title != afkSentinel || rows[0].APM != 0 {
		t.Errorf("row = %+v, want the sentinel with apm 0", rows[0])
	}
}

func TestRecordOnceProbeFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	fakeClock := clock.Fake(testEpoch)
	locked := false
	rec, _ := newTestRecorder(t, store, fakeClock, &locked, "")

	if err := rec.recordOnce(ctx); err != nil {
		t.Fatalf("recordOnce: %v", err)
	}
	rows, err := store.SnapshotsSince(ctx, testEpoch)
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != fallbackTitle {
		t.Fatalf("rows = %+v, want one %q row", rows, fallbackTitle)
	}
}

func TestRecordOncePrunesExpiredRows(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	stale := Snapshot{Timestamp: testEpoch.Add(-2 * time.Hour), Title: "stale", APM: 0}
	if err := store.InsertSnapshot(ctx, stale); err != nil {
		t.Fatalf("InsertSnapshot: %v", err)
	}

	fakeClock := clock.Fake(testEpoch)
	locked := false
	rec, _ := newTestRecorder(t, store, fakeClock, &locked, "editor")

	if err := rec.recordOnce(ctx); err != nil {
		t.Fatalf("recordOnce: %v", err)
	}
	rows, err := store.SnapshotsSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "editor" {
		t.Fatalf("rows = %+v, want only the fresh row (stale pruned)", rows)
	}
}

func TestRecorderRunWritesOnEachTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := testStore(t)
	fakeClock := clock.Fake(testEpoch)
	locked := false
	rec, _ := newTestRecorder(t, store, fakeClock, &locked, "editor")

	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	// Advance repeatedly rather than once: the recorder goroutine may
	// not have registered its ticker yet when the test starts, and an
	// advance before registration produces no tick. Extra advances
	// only produce extra rows, which the >= check tolerates.
	advanceUntilRows := func(want int) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			rows, err := store.SnapshotsSince(ctx, testEpoch)
			if err != nil {
				t.Fatalf("SnapshotsSince: %v", err)
			}
			if len(rows) >= want {
				return
			}
			select {
			case <-deadline:
				t.Fatalf("got %d rows, want %d", len(rows), want)
			default:
				fakeClock.Advance(time.Minute)
				time.Sleep(time.Millisecond)
			}
		}
	}

	advanceUntilRows(1)
	advanceUntilRows(2)

	cancel()
	<-done
}
