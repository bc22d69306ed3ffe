// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package redact removes personally identifying content from window
// titles before they leave the machine in a rendered timeline.
//
// Redaction runs in two stages: a deterministic whole-word strip of
// configured keywords, then a best-effort rewrite by a local language
// model that removes residual names, emails, and usernames. Stage 2 is
// strictly additive — when it is disabled, times out, or fails, the
// stage-1 text stands as the final redaction.
//
// Results accumulate in a process-lifetime Cache so each unique title
// is redacted at most once per process under normal operation. The
// Resolver fans cache misses out over a bounded worker group.
package redact
