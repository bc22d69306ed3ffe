// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for text-completion backends.
// Implementations translate between the common types in this package
// and the vendor's wire format.
type Provider interface {
	// Complete sends a request and blocks until the full response is
	// available. The call is bounded by ctx: pass a deadline context
	// to cap how long the caller waits.
	Complete(ctx context.Context, request Request) (*Response, error)
}

// Request is a single-turn completion request.
type Request struct {
	// Model is the backend model name.
	Model string

	// System is the system prompt constraining the model's role.
	// Optional.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens caps the response length. Zero means the backend
	// default.
	MaxTokens int
}

// Response is the completed text plus basic usage accounting.
type Response struct {
	// Text is the assistant's reply with surrounding whitespace
	// preserved as the backend returned it.
	Text string

	// Model is the model that produced the reply, as reported by the
	// backend.
	Model string
}

// ProviderError is returned when the backend responds with an error.
type ProviderError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Type is the provider-specific error type string
	// (e.g., "invalid_request_error").
	Type string

	// Message is the human-readable error description.
	Message string
}

func (err *ProviderError) Error() string {
	if err.Type != "" {
		return fmt.Sprintf("llm: HTTP %d: %s: %s", err.StatusCode, err.Type, err.Message)
	}
	return fmt.Sprintf("llm: HTTP %d: %s", err.StatusCode, err.Message)
}
