// Package retry provides the single bounded-retry wrapper used by every
// pipeline stage that talks to an external provider. Stages differ only in
// their Policy; retryability is decided by the classified error tag, not by
// re-inspecting raw provider responses at each call site.
package retry

import (
	"context"
	"time"

	"github.com/creatorly/styletrain/internal/domain"
)

// Backoff selects how the delay grows between attempts.
type Backoff int

const (
	// BackoffFlat waits the same Delay between every attempt.
	BackoffFlat Backoff = iota
	// BackoffExponential doubles the delay after each failed attempt.
	BackoffExponential
)

// Policy bounds a retried operation.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     Backoff
	// IsRetryable decides whether a failure is worth another attempt.
	// Nil defaults to domain.IsRetryable (the error's retryable tag).
	IsRetryable func(error) bool
}

// Do runs op up to p.MaxAttempts times, sleeping between attempts according
// to the policy. It returns the first success, the first non-retryable
// error, or the last error once attempts are exhausted. Context cancellation
// interrupts the wait and returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	isRetryable := p.IsRetryable
	if isRetryable == nil {
		isRetryable = domain.IsRetryable
	}

	delay := p.Delay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == attempts {
			break
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		if p.Backoff == BackoffExponential {
			delay *= 2
		}
	}
	return zero, lastErr
}
