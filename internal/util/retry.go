// Package util holds the retry helpers shared by every client that crosses
// a network boundary.
package util

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/akolanti/ragchain/internal/apperrors"
)

// CalculateBackoff returns exponential backoff with jitter.
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2+1)) - backoff/4
	return backoff + jitter
}

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Timeout bounds each attempt; zero means the caller's context only.
	Timeout time.Duration
}

// Retry runs fn until it succeeds, returns a non-transient error, or the
// attempts are exhausted. Only *apperrors.TransientError is retried.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(CalculateBackoff(policy.BaseDelay, attempt)):
			}
		}

		result, err := callWithTimeout(ctx, policy.Timeout, fn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !apperrors.IsTransient(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", policy.MaxRetries+1, lastErr)
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}
