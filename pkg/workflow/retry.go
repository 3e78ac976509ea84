package workflow

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the attempts of one node invocation. Delays grow as
// BaseDelay * Multiplier^(attempt-1), without jitter.
type RetryPolicy struct {
	BaseDelay   time.Duration
	Multiplier  float64
	MaxAttempts int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxAttempts: 3,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = p.BaseDelay
	exponential.Multiplier = max(p.Multiplier, 1)
	exponential.RandomizationFactor = 0
	exponential.MaxInterval = time.Hour
	exponential.MaxElapsedTime = 0
	exponential.Reset()

	retries := max(p.MaxAttempts, 1) - 1

	return backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(retries)), ctx)
}
