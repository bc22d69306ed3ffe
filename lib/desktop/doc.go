// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package desktop wraps the external tools that expose desktop session
// state: xdotool for the focused window title, xprintidle for input
// idleness, and the session-bus screensaver for lock state. All calls
// are best-effort with bounded timeouts; callers receive an explicit
// "no value" result instead of errors or blocking.
package desktop
