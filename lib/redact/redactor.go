// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/focuslog/focuslog/lib/llm"
)

// rewriteSystemPrompt constrains the stage-2 model to pure text
// sanitization. The examples anchor the expected behavior: strip
// usernames and emails, keep project and application context intact.
const rewriteSystemPrompt = `You are a text sanitization filter. Your only task is to analyze the following window title and remove any Personally Identifiable Information (PII) like email addresses, real names, or usernames/nicknames. Keep all other information intact. You must only output the sanitized title.
Examples:
- Input: "@some_user - General - My Discord Server"
- Output: "General - My Discord Server"
- Input: "main.go - MySecretProject - Visual Studio Code"
- Output: "main.go - MySecretProject - Visual Studio Code"`

// separatorArtifacts matches the " - - " style leftovers produced when
// a keyword between two separators is stripped.
var separatorArtifacts = regexp.MustCompile(`\s*-\s*-\s*`)

// RedactorConfig holds the parameters for creating a Redactor.
type RedactorConfig struct {
	// ForbiddenKeywords are removed wholesale in stage 1, whole-word
	// and case-insensitive. Empty means stage 1 is a no-op.
	ForbiddenKeywords []string

	// Provider performs the stage-2 rewrite. Nil disables stage 2;
	// redaction then stops at the keyword strip.
	Provider llm.Provider

	// Model is the backend model name for stage 2.
	Model string

	// Timeout bounds each stage-2 call.
	Timeout time.Duration

	// Logger receives stage-2 failure warnings. Required.
	Logger *slog.Logger
}

// Redactor removes personally identifying content from window titles
// in two stages: a deterministic keyword strip, then a best-effort
// external rewrite. A failing or absent stage 2 degrades to the
// stage-1 result — redaction never makes a title less redacted than
// the keyword strip.
type Redactor struct {
	pattern  *regexp.Regexp // nil when no keywords are configured
	provider llm.Provider
	model    string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRedactor compiles the keyword pattern and returns a Redactor.
func NewRedactor(cfg RedactorConfig) (*Redactor, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("redact: Logger is required")
	}

	var pattern *regexp.Regexp
	if len(cfg.ForbiddenKeywords) > 0 {
		quoted := make([]string, len(cfg.ForbiddenKeywords))
		for i, keyword := range cfg.ForbiddenKeywords {
			quoted[i] = regexp.QuoteMeta(keyword)
		}
		var err error
		pattern, err = regexp.Compile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("redact: compiling keyword pattern: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Redactor{
		pattern:  pattern,
		provider: cfg.Provider,
		model:    cfg.Model,
		timeout:  timeout,
		logger:   cfg.Logger,
	}, nil
}

// Redact runs both stages on one title. The returned string is always
// usable: stage-2 failures are logged and fall back to the stage-1
// text. The error return is reserved for resolver-level bookkeeping
// and is always nil from this implementation.
func (r *Redactor) Redact(ctx context.Context, title string) (string, error) {
	stripped := r.stripKeywords(title)

	if r.provider == nil {
		return stripped, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	response, err := r.provider.Complete(ctx, llm.Request{
		Model:  r.model,
		System: rewriteSystemPrompt,
		// Plain quotes: the model must see the title verbatim, not a
		// Go-escaped rendering of it.
		Prompt: "Now, sanitize this window title:\nInput: \"" + stripped + "\"\nOutput:",
	})
	if err != nil {
		r.logger.Warn("stage-2 rewrite failed, using keyword-stripped title",
			"title", stripped,
			"error", err,
		)
		return stripped, nil
	}

	rewritten := strings.TrimSpace(response.Text)
	if rewritten == "" {
		r.logger.Warn("stage-2 rewrite returned empty text, using keyword-stripped title",
			"title", stripped,
		)
		return stripped, nil
	}
	return rewritten, nil
}

// stripKeywords is stage 1: remove all whole-word, case-insensitive
// keyword matches, collapse the " - - " artifacts that stripping
// leaves behind, and trim separator characters from both ends.
func (r *Redactor) stripKeywords(title string) string {
	if r.pattern == nil {
		return title
	}
	stripped := strings.TrimSpace(r.pattern.ReplaceAllString(title, ""))
	stripped = separatorArtifacts.ReplaceAllString(stripped, " - ")
	return strings.Trim(stripped, " -")
}
