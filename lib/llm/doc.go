// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm provides a provider-agnostic interface for text
// completion backends.
//
// The primary abstraction is [Provider], a blocking single-turn
// completion. The [OpenAI] implementation speaks the OpenAI Chat
// Completions wire format, which a local Ollama server exposes at
// /v1/chat/completions — FocusLog uses it for the stage-2 privacy
// rewrite of window titles.
package llm
