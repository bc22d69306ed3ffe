// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code uses
// Real(); tests use Fake(initial) and drive time explicitly with
// Advance, making ticker-driven loops deterministic.
package clock
