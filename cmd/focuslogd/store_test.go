// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := openStore(filepath.Join(t.TempDir(), "activity.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestInsertAndQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	want := []Snapshot{
		{Timestamp: testEpoch, Title: "editor", APM: 42},
		{Timestamp: testEpoch.Add(time.Minute), Title: "browser", APM: 7},
		{Timestamp: testEpoch.Add(2 * time.Minute), Title: afkSentinel, APM: 0},
	}
	// Insert out of order to confirm the query sorts.
	for _, i := range []int{2, 0, 1} {
		if err := store.InsertSnapshot(ctx, want[i]); err != nil {
			t.Fatalf("InsertSnapshot: %v", err)
		}
	}

	got, err := store.SnapshotsSince(ctx, testEpoch)
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d snapshots, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Timestamp.Equal(want[i].Timestamp) || got[i].Title != want[i].Title || got[i].APM != want[i].APM {
			t.Errorf("snapshot %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestInsertDuplicateTimestampIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	first := Snapshot{Timestamp: testEpoch, Title: "editor", APM: 42}
	if err := store.InsertSnapshot(ctx, first); err != nil {
		t.Fatalf("InsertSnapshot: %v", err)
	}
	// Same timestamp, different payload: the original row wins.
	dup := Snapshot{Timestamp: testEpoch, Title: "other", APM: 1}
	if err := store.InsertSnapshot(ctx, dup); err != nil {
		t.Fatalf("InsertSnapshot duplicate: %v", err)
	}

	got, err := store.SnapshotsSince(ctx, testEpoch)
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(got))
	}
	if got[0].Title != "editor" || got[0].APM != 42 {
		t.Errorf("duplicate insert overwrote the row: %+v", got[0])
	}
}

func TestSnapshotsSinceBoundaryIsInclusive(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	for i := 0; i < 3; i++ {
		snap := Snapshot{Timestamp: testEpoch.Add(time.Duration(i) * time.Minute), Title: "w", APM: i}
		if err := store.InsertSnapshot(ctx, snap); err != nil {
			t.Fatalf("InsertSnapshot: %v", err)
		}
	}

	got, err := store.SnapshotsSince(ctx, testEpoch.Add(time.Minute))
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2 (boundary row included)", len(got))
	}
	if !got[0].Timestamp.Equal(testEpoch.Add(time.Minute)) {
		t.Errorf("first snapshot = %v, want the boundary row", got[0].Timestamp)
	}
}

func TestDeleteBefore(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	for i := 0; i < 5; i++ {
		snap := Snapshot{Timestamp: testEpoch.Add(time.Duration(i) * time.Minute), Title: "w", APM: 0}
		if err := store.InsertSnapshot(ctx, snap); err != nil {
			t.Fatalf("InsertSnapshot: %v", err)
		}
	}

	deleted, err := store.DeleteBefore(ctx, testEpoch.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d rows, want 2", deleted)
	}

	remaining, err := store.SnapshotsSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(remaining) != 3 {
		t.Errorf("%d rows remain, want 3", len(remaining))
	}
}

func TestRecordAndPrune(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	old := Snapshot{Timestamp: testEpoch.Add(-2 * time.Hour), Title: "stale", APM: 0}
	if err := store.InsertSnapshot(ctx, old); err != nil {
		t.Fatalf("InsertSnapshot: %v", err)
	}

	fresh := Snapshot{Timestamp: testEpoch, Title: "editor", APM: 10}
	if err := store.RecordAndPrune(ctx, fresh, testEpoch.Add(-time.Hour)); err != nil {
		t.Fatalf("RecordAndPrune: %v", err)
	}

	got, err := store.SnapshotsSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d snapshots, want 1 (stale row pruned)", len(got))
	}
	if got[0].Title != "editor" {
		t.Errorf("surviving row = %+v, want the fresh snapshot", got[0])
	}
}
