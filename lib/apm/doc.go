// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package apm derives an Actions-Per-Minute signal from idle-time
// readings. The Sampler polls the idle timer and appends a tick to the
// Ledger whenever input occurred since the previous poll; the Ledger
// counts ticks over a trailing window with sliding eviction.
package apm
