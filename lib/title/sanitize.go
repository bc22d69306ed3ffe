// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package title provides cosmetic cleanup of raw window titles before
// they are stored. This is shortening and normalization only — privacy
// redaction is a separate concern handled at query time by lib/redact.
package title

import "strings"

// Sanitizer shortens and normalizes raw window titles. It is a pure
// function object: the same input always produces the same output.
type Sanitizer struct {
	browsers []string
	rules    []Rule
	maxLen   int
}

// Rule rewrites a browser title containing Keyword to
// "<CleanName> - <browser suffix>".
type Rule struct {
	Keyword   string
	CleanName string
}

// NewSanitizer returns a Sanitizer. Rules apply in the given order;
// the first matching rule wins. maxLen bounds titles that match no
// rule; values below 4 are raised to 4 so the shortened form always
// keeps at least one character after the ellipsis.
func NewSanitizer(browsers []string, rules []Rule, maxLen int) *Sanitizer {
	if maxLen < 4 {
		maxLen = 4
	}
	return &Sanitizer{browsers: browsers, rules: rules, maxLen: maxLen}
}

// Sanitize cleans one raw title:
//
//  1. Titles ending in a known browser suffix are rewritten by the
//     first rule whose keyword appears anywhere in the title.
//  2. Otherwise, titles longer than the limit keep their tail:
//     "..." plus the last maxLen-3 characters. The tail carries the
//     most specific part of deeply nested titles (file - project -
//     editor).
//  3. Everything else passes through unchanged.
func (s *Sanitizer) Sanitize(raw string) string {
	if browser := s.matchBrowser(raw); browser != "" {
		for _, rule := range s.rules {
			if strings.Contains(raw, rule.Keyword) {
				return rule.CleanName + " - " + browser
			}
		}
	}

	// Length and slicing are in runes: a byte slice would cut
	// multi-byte titles mid-rune and store garbage.
	if runes := []rune(raw); len(runes) > s.maxLen {
		return "..." + string(runes[len(runes)-(s.maxLen-3):])
	}
	return raw
}

// matchBrowser returns the first known browser suffix the title ends
// with, or "".
func (s *Sanitizer) matchBrowser(raw string) string {
	for _, browser := range s.browsers {
		if strings.HasSuffix(raw, browser) {
			return browser
		}
	}
	return ""
}
