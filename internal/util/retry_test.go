package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/ragchain/internal/apperrors"
)

func TestCalculateBackoff_ZeroAttempt(t *testing.T) {
	if got := CalculateBackoff(time.Second, 0); got != 0 {
		t.Errorf("expected 0 for attempt 0, got %v", got)
	}
	if got := CalculateBackoff(time.Second, -3); got != 0 {
		t.Errorf("expected 0 for negative attempt, got %v", got)
	}
}

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	baseDelay := 100 * time.Millisecond

	for attempt := 1; attempt <= 5; attempt++ {
		expectedBase := baseDelay * time.Duration(1<<uint(attempt))
		minExpected := expectedBase * 3 / 4
		maxExpected := expectedBase*5/4 + time.Nanosecond

		result := CalculateBackoff(baseDelay, attempt)
		if result < minExpected || result > maxExpected {
			t.Errorf("attempt %d: expected backoff between %v and %v, got %v", attempt, minExpected, maxExpected, result)
		}
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	result := CalculateBackoff(time.Millisecond, 100)
	if result > 37500*time.Millisecond || result < 0 {
		t.Errorf("expected capped backoff, got %v", result)
	}
}

func TestRetry_RetriesTransientOnly(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 1, false},
		{"transient then success", 2, apperrors.Transient("op", errors.New("429")), 3, false},
		{"transient exhausted", 10, apperrors.Transient("op", errors.New("503")), 4, true},
		{"permanent stops", 10, errors.New("401 unauthorized"), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := Retry(context.Background(), policy, func(ctx context.Context) (string, error) {
				calls++
				if calls <= tt.failures {
					return "", tt.err
				}
				return "ok", nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d; want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != "ok" {
				t.Errorf("got %q; want ok", got)
			}
		})
	}
}

func TestRetry_AppliesPerAttemptTimeout(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 0, Timeout: 10 * time.Millisecond}

	_, err := Retry(context.Background(), policy, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}

	calls := 0
	_, err := Retry(ctx, policy, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, apperrors.Transient("op", errors.New("boom"))
	})
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
