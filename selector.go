package pagedoc

import (
	"context"
	"time"
)

// SelectorSet is a site-specific recipe for locating article parts in markup.
type SelectorSet struct {
	// CSS selector for the element containing the whole article.
	ArticleContainer string `json:"articleContainer"`

	// CSS selector for content blocks within the container.
	Content string `json:"content"`

	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	PublishDate string `json:"publishDate,omitempty"`

	// Selectors for regions to drop before extraction (ads, related links).
	Exclude []string `json:"exclude,omitempty"`
}

// Validate returns an error if the selector set cannot locate content.
func (s *SelectorSet) Validate() error {
	if s.ArticleContainer == "" {
		return Errorf(EINVALID, "selector set requires an article container")
	}
	if s.Content == "" {
		return Errorf(EINVALID, "selector set requires a content selector")
	}
	return nil
}

// CachedSelectors is a SelectorSet stored per domain with its trust signal.
type CachedSelectors struct {
	ID        string      `json:"id"`
	Domain    string      `json:"domain"`
	Selectors SelectorSet `json:"selectors"`

	// Number of clean extractions performed with this set. A set with at
	// least one recorded success is used without re-validation.
	SuccessCount int `json:"successCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Trusted reports whether the cached set may be used without a model call.
func (c *CachedSelectors) Trusted() bool {
	return c.SuccessCount > 0
}

// SelectorCacheService remembers a proven extraction recipe per domain.
// The cache is allowed to be wrong but never allowed to stay wrong: a
// failed extraction with a cached set must invalidate the entry so the
// next run re-discovers selectors.
type SelectorCacheService interface {
	// Get returns the cached selectors for a domain.
	// Returns ENOTFOUND if no entry exists.
	Get(ctx context.Context, domain string) (*CachedSelectors, error)

	// Put stores a selector set for a domain, replacing any existing entry.
	Put(ctx context.Context, domain string, selectors SelectorSet) error

	// MarkSuccess increments the trust counter after a clean extraction.
	MarkSuccess(ctx context.Context, domain string) error

	// Invalidate discards the entry for a domain after a failed extraction.
	// Invalidating an absent entry is not an error.
	Invalidate(ctx context.Context, domain string) error
}
