// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/focuslog/focuslog/lib/sqlitepool"
)

// schema is applied to every pool connection. CREATE TABLE IF NOT
// EXISTS makes it idempotent across connections and restarts.
const schema = `
CREATE TABLE IF NOT EXISTS activity (
	timestamp    INTEGER PRIMARY KEY,
	active_title TEXT NOT NULL,
	apm          INTEGER NOT NULL
);
`

// Snapshot is one recorded observation: what window was focused and
// how active the user was at that moment.
type Snapshot struct {
	Timestamp time.Time
	Title     string
	APM       int
}

// Store persists activity snapshots in SQLite. Timestamps are stored
// as Unix nanoseconds, which keeps the primary key a cheap integer
// comparison for range scans and makes duplicate-timestamp inserts
// detectable by the INSERT OR IGNORE conflict rule.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// openStore opens (creating if needed) the activity database at path.
func openStore(path string, logger *slog.Logger) (*Store, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// InsertSnapshot writes one snapshot row. A row with the same
// timestamp already present is left untouched, so retried writes are
// idempotent.
func (s *Store) InsertSnapshot(ctx context.Context, snap Snapshot) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: insert snapshot: %w", err)
	}
	defer s.pool.Put(conn)

	if err := insertSnapshot(conn, snap); err != nil {
		return fmt.Errorf("store: insert snapshot: %w", err)
	}
	return nil
}

// RecordAndPrune writes one snapshot and deletes rows older than
// cutoff inside a single immediate transaction, so a recorder cycle
// either lands completely or not at all.
func (s *Store) RecordAndPrune(ctx context.Context, snap Snapshot, cutoff time.Time) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: record and prune: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: record and prune: begin: %w", err)
	}
	defer endTransaction(&err)

	if err = insertSnapshot(conn, snap); err != nil {
		return fmt.Errorf("store: record and prune: %w", err)
	}
	if err = deleteBefore(conn, cutoff); err != nil {
		return fmt.Errorf("store: record and prune: %w", err)
	}
	pruned := conn.Changes()
	if pruned > 0 {
		s.logger.Debug("pruned expired snapshots", "rows", pruned, "cutoff", cutoff)
	}
	return nil
}

// SnapshotsSince returns all snapshots with timestamp >= since, in
// ascending timestamp order.
func (s *Store) SnapshotsSince(ctx context.Context, since time.Time) ([]Snapshot, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: snapshots since: %w", err)
	}
	defer s.pool.Put(conn)

	var snapshots []Snapshot
	err = sqlitex.Execute(conn,
		`SELECT timestamp, active_title, apm FROM activity
		 WHERE timestamp >= ? ORDER BY timestamp`,
		&sqlitex.ExecOptions{
			Args: []any{since.UnixNano()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				snapshots = append(snapshots, Snapshot{
					Timestamp: time.Unix(0, stmt.ColumnInt64(0)),
					Title:     stmt.ColumnText(1),
					APM:       stmt.ColumnInt(2),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("store: snapshots since: %w", err)
	}
	return snapshots, nil
}

// DeleteBefore removes all snapshots with timestamp < cutoff and
// returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: delete before: %w", err)
	}
	defer s.pool.Put(conn)

	if err := deleteBefore(conn, cutoff); err != nil {
		return 0, fmt.Errorf("store: delete before: %w", err)
	}
	return conn.Changes(), nil
}

func insertSnapshot(conn *sqlite.Conn, snap Snapshot) error {
	return sqlitex.Execute(conn,
		`INSERT OR IGNORE INTO activity (timestamp, active_title, apm) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{snap.Timestamp.UnixNano(), snap.Title, snap.APM},
		})
}

func deleteBefore(conn *sqlite.Conn, cutoff time.Time) error {
	return sqlitex.Execute(conn,
		`DELETE FROM activity WHERE timestamp < ?`,
		&sqlitex.ExecOptions{
			Args: []any{cutoff.UnixNano()},
		})
}
