// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides a fixed-size pool of SQLite connections
// with standard pragmas (WAL, NORMAL synchronous, busy timeout)
// applied to every connection. Callers Take a connection, use it, and
// Put it back; the pool serializes access so a connection is never
// shared between goroutines.
package sqlitepool
