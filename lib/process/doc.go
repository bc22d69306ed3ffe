// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds small helpers for binary entrypoints.
package process
