package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/pagedoc"
)

// Ensure LoggingSelectorCache implements pagedoc.SelectorCacheService.
var _ pagedoc.SelectorCacheService = (*LoggingSelectorCache)(nil)

// LoggingSelectorCache wraps a SelectorCacheService with debug logging of
// cache hits, misses and trust changes.
type LoggingSelectorCache struct {
	next   pagedoc.SelectorCacheService
	logger *slog.Logger
}

// NewLoggingSelectorCache creates a new LoggingSelectorCache.
func NewLoggingSelectorCache(next pagedoc.SelectorCacheService, logger *slog.Logger) *LoggingSelectorCache {
	return &LoggingSelectorCache{next: next, logger: logger}
}

// Get delegates to the wrapped cache and logs the hit or miss.
func (c *LoggingSelectorCache) Get(ctx context.Context, domain string) (*pagedoc.CachedSelectors, error) {
	cached, err := c.next.Get(ctx, domain)
	if pagedoc.ErrorCode(err) == pagedoc.ENOTFOUND {
		c.logger.Debug("selector cache miss", "domain", domain)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("selector cache hit",
		"domain", domain,
		"trusted", cached.Trusted(),
		"success_count", cached.SuccessCount,
	)
	return cached, nil
}

// Put delegates to the wrapped cache.
func (c *LoggingSelectorCache) Put(ctx context.Context, domain string, selectors pagedoc.SelectorSet) error {
	if err := c.next.Put(ctx, domain, selectors); err != nil {
		return err
	}
	c.logger.Info("selectors cached", "domain", domain)
	return nil
}

// MarkSuccess delegates to the wrapped cache.
func (c *LoggingSelectorCache) MarkSuccess(ctx context.Context, domain string) error {
	return c.next.MarkSuccess(ctx, domain)
}

// Invalidate delegates to the wrapped cache and logs the eviction.
func (c *LoggingSelectorCache) Invalidate(ctx context.Context, domain string) error {
	if err := c.next.Invalidate(ctx, domain); err != nil {
		return err
	}
	c.logger.Info("selectors invalidated", "domain", domain)
	return nil
}
