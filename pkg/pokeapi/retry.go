package pokeapi

import (
	"net/http"
	"time"
)

// RetryPolicy parameterizes how transient request failures are retried:
// capped attempt count, exponential backoff, and a predicate deciding
// what counts as transient.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(statusCode int, err error) bool
}

// DefaultRetryable treats network errors, 5xx responses and 429 as
// transient. Other 4xx statuses fail immediately.
func DefaultRetryable(statusCode int, err error) bool {
	if err != nil {
		return true
	}
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= 500
}

// backoff returns the delay before the given retry (1-based), doubling
// from BaseDelay and capped at MaxDelay.
func (p RetryPolicy) backoff(retry int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
