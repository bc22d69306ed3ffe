// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// RedactFunc redacts one title. Implemented by [Redactor.Redact];
// tests substitute counting fakes.
type RedactFunc func(ctx context.Context, title string) (string, error)

// ResolverConfig holds the parameters for creating a Resolver.
type ResolverConfig struct {
	// Cache is the shared title→redaction cache. Required.
	Cache *Cache

	// Redact produces the redaction for a cache miss. Required.
	Redact RedactFunc

	// MaxParallel bounds concurrent Redact calls per ResolveAll.
	// Defaults to 4 if zero or negative.
	MaxParallel int

	// Logger receives per-title failure messages. Required.
	Logger *slog.Logger
}

// Resolver turns a set of titles into a complete title→label map,
// filling cache misses through bounded-parallel redaction.
type Resolver struct {
	cache       *Cache
	redact      RedactFunc
	maxParallel int
	logger      *slog.Logger
}

// NewResolver validates the config and returns a Resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("redact: Cache is required")
	}
	if cfg.Redact == nil {
		return nil, fmt.Errorf("redact: Redact is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("redact: Logger is required")
	}
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Resolver{
		cache:       cfg.Cache,
		redact:      cfg.Redact,
		maxParallel: maxParallel,
		logger:      cfg.Logger,
	}, nil
}

// ResolveAll returns a map covering every input title. Cached titles
// are served from the cache without invoking the redactor. Misses are
// redacted concurrently (at most MaxParallel in flight) and stored as
// each completes. A per-title failure is isolated: the original title
// is cached as its own redaction so one failure never stalls the
// batch, and the title is not retried until the process restarts.
func (r *Resolver) ResolveAll(ctx context.Context, titles []string) map[string]string {
	misses := r.cache.Misses(titles)

	if len(misses) > 0 {
		r.logger.Info("redacting new unique titles", "count", len(misses))

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(r.maxParallel)
		for _, title := range misses {
			title := title
			group.Go(func() error {
				redacted, err := r.redact(groupCtx, title)
				if err != nil {
					r.logger.Error("title redaction failed, caching original",
						"title", title,
						"error", err,
					)
					r.cache.Store(title, title)
					return nil
				}
				r.cache.Store(title, redacted)
				return nil
			})
		}
		// Workers never return errors; Wait is purely a barrier.
		_ = group.Wait()
	}

	labels := make(map[string]string, len(titles))
	for _, t := range titles {
		if redacted, ok := r.cache.Lookup(t); ok {
			labels[t] = redacted
		} else {
			labels[t] = t
		}
	}
	return labels
}
