package birdweather

import (
	"context"
	"time"
)

// RetryPolicy controls how transient transport failures are retried. It is
// injected into the client so tests can observe backoff decisions with a
// fake sleep instead of waiting on a real clock.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int

	// Backoff returns the delay before the given retry. attempt is
	// zero-based: the delay after the first failed attempt is Backoff(0).
	Backoff func(attempt int) time.Duration

	// Sleep waits for the given duration, returning early with the context
	// error if the context is cancelled.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the upstream behavior: three attempts with
// exponential backoff of 2^attempt seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep:       sleepContext,
	}
}

// ExponentialBackoff returns a backoff function producing base * 2^attempt.
func ExponentialBackoff(base time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return base << uint(attempt)
	}
}

// normalized fills zero fields with defaults so a partially specified
// policy is always usable.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.Backoff == nil {
		p.Backoff = ExponentialBackoff(time.Second)
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
