package pagedoc

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"strings"
	"time"
)

// MinRetryDelay is the floor applied to every computed backoff delay.
const MinRetryDelay = 100 * time.Millisecond

// DefaultRetryDelays returns the backoff table used when a policy does not
// configure one: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryPolicy configures CallWithRetry.
type RetryPolicy struct {
	// Maximum number of retries after the initial attempt.
	// The delay table is indexed by attempt and its last entry repeats.
	MaxRetries int
	Delays     []time.Duration

	// HTTP status codes that warrant a retry. Authentication statuses
	// (401/403) are never retried regardless of this list.
	RetryableStatuses []int

	// Also retry on timeout and network-level failures.
	RetryNetworkErrors bool

	// Optional override of the default classification. A nil return
	// defers to the default; true/false forces the decision.
	ShouldRetry func(err error) *bool

	// Invoked before each sleep for observability.
	OnRetry func(attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns the policy used for provider calls:
// 3 retries on 429/500/502/503/504 and network errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:         3,
		Delays:             DefaultRetryDelays(),
		RetryableStatuses:  []int{429, 500, 502, 503, 504},
		RetryNetworkErrors: true,
	}
}

// CallWithRetry invokes op with backoff-and-jitter retries per policy.
// Authentication failures propagate immediately; retryable failures sleep
// and try again until the policy is exhausted, then the last error is
// returned. A Retry-After hint on the error overrides the delay table.
func CallWithRetry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt >= policy.MaxRetries || !policy.retryable(err) {
			break
		}

		delay := policy.delayFor(attempt, err)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, delay)
		}

		select {
		case <-ctx.Done():
			return zero, Errorf(ECANCELED, "canceled during retry backoff")
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// retryable classifies an error under the policy.
func (p *RetryPolicy) retryable(err error) bool {
	if IsAuthError(err) {
		return false
	}
	if p.ShouldRetry != nil {
		if forced := p.ShouldRetry(err); forced != nil {
			return *forced
		}
	}
	if status := HTTPStatus(err); status != 0 {
		for _, s := range p.RetryableStatuses {
			if status == s {
				return true
			}
		}
		return false
	}
	if p.RetryNetworkErrors {
		return isNetworkError(err)
	}
	return false
}

// delayFor computes the sleep before the next attempt: the table entry for
// this attempt with +-20% jitter, floored at MinRetryDelay. A server
// Retry-After hint wins over the table.
func (p *RetryPolicy) delayFor(attempt int, err error) time.Duration {
	if hint := RetryAfter(err); hint > 0 {
		return hint
	}

	delays := p.Delays
	if len(delays) == 0 {
		delays = DefaultRetryDelays()
	}
	idx := attempt
	if idx >= len(delays) {
		idx = len(delays) - 1
	}

	base := delays[idx]
	jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(base))
	delay := base + jitter
	if delay < MinRetryDelay {
		delay = MinRetryDelay
	}
	return delay
}

// networkErrorPatterns are message fragments that identify transport
// failures from clients that don't surface typed errors.
var networkErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"unexpected EOF",
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, pattern := range networkErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
