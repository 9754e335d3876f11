package pipeline

import (
	"context"

	"github.com/fwojciec/pagedoc"
	"golang.org/x/time/rate"
)

// Ensure LimitedProvider implements pagedoc.Provider at compile time.
var _ pagedoc.Provider = (*LimitedProvider)(nil)

// LimitedProvider throttles calls to a wrapped provider using a token
// bucket. Providers meter by requests per minute; pacing our own calls is
// cheaper than burning retry budget on 429s.
type LimitedProvider struct {
	next    pagedoc.Provider
	limiter *rate.Limiter
}

// NewLimitedProvider wraps next with a limit of rps requests per second
// and a burst of 1.
func NewLimitedProvider(next pagedoc.Provider, rps float64) *LimitedProvider {
	return &LimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Generate waits for the rate limit, then delegates.
func (p *LimitedProvider) Generate(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", pagedoc.Errorf(pagedoc.ECANCELED, "canceled waiting for rate limit")
	}
	return p.next.Generate(ctx, req)
}
