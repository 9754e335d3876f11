package mock

import (
	"context"

	"github.com/fwojciec/pagedoc"
)

var _ pagedoc.SelectorCacheService = (*SelectorCacheService)(nil)

// SelectorCacheService is a mock implementation of pagedoc.SelectorCacheService.
type SelectorCacheService struct {
	GetFn         func(ctx context.Context, domain string) (*pagedoc.CachedSelectors, error)
	PutFn         func(ctx context.Context, domain string, selectors pagedoc.SelectorSet) error
	MarkSuccessFn func(ctx context.Context, domain string) error
	InvalidateFn  func(ctx context.Context, domain string) error
}

func (s *SelectorCacheService) Get(ctx context.Context, domain string) (*pagedoc.CachedSelectors, error) {
	return s.GetFn(ctx, domain)
}

func (s *SelectorCacheService) Put(ctx context.Context, domain string, selectors pagedoc.SelectorSet) error {
	return s.PutFn(ctx, domain, selectors)
}

func (s *SelectorCacheService) MarkSuccess(ctx context.Context, domain string) error {
	return s.MarkSuccessFn(ctx, domain)
}

func (s *SelectorCacheService) Invalidate(ctx context.Context, domain string) error {
	return s.InvalidateFn(ctx, domain)
}
