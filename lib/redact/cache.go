// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package redact

import "sync"

// Cache maps raw (or cosmetically sanitized) titles to their redacted
// form. Entries live for the process lifetime with no eviction: the
// set of distinct window titles a single user produces in a day is
// small, and a cached entry saves an external rewrite call.
//
// Cache is safe for concurrent use. Each Lookup and Store is
// individually locked; the check-miss → redact → store sequence spans
// lock acquisitions, so two concurrent requests may redact the same
// never-before-seen title twice. Both results are valid and the cache
// converges last-write-wins.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Lookup returns the cached redaction for title.
func (c *Cache) Lookup(title string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	redacted, ok := c.entries[title]
	return redacted, ok
}

// Store records the redaction for title, replacing any existing entry.
func (c *Cache) Store(title, redacted string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[title] = redacted
}

// Misses returns the subset of titles with no cache entry, in input
// order.
func (c *Cache) Misses(titles []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var missing []string
	for _, title := range titles {
		if _, ok := c.entries[title]; !ok {
			missing = append(missing, title)
		}
	}
	return missing
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
