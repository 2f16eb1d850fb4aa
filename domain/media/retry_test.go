package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	policy := FixedDelay(3, 0)

	err := policy.Do(context.Background(), func(attempt int) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	policy := FixedDelay(3, 0)

	err := policy.Do(context.Background(), func(attempt int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	calls := 0
	lastErr := errors.New("attempt 3 failed")
	policy := FixedDelay(3, 0)

	err := policy.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt == 3 {
			return lastErr
		}
		return errors.New("earlier failure")
	})

	if calls != 3 {
		t.Errorf("expected exactly 3 calls, got %d", calls)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("expected last attempt's error, got %v", err)
	}
}

func TestDoPassesAttemptIndex(t *testing.T) {
	var seen []int
	policy := FixedDelay(3, 0)

	_ = policy.Do(context.Background(), func(attempt int) error {
		seen = append(seen, attempt)
		return errors.New("fail")
	})

	want := []int{1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("attempt %d: expected index %d, got %d", i, want[i], seen[i])
		}
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := FixedDelay(3, 10*time.Millisecond)

	err := policy.Do(ctx, func(attempt int) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	if calls != 1 {
		t.Errorf("expected cancellation after 1 call, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDoTreatsZeroAttemptsAsOne(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 0}

	_ = policy.Do(context.Background(), func(attempt int) error {
		calls++
		return errors.New("fail")
	})

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestLinearBackoffGrowsWithAttempt(t *testing.T) {
	policy := LinearBackoff(3, time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 3 * time.Second},
	}

	for _, tt := range tests {
		if got := policy.Wait(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected wait %v, got %v", tt.attempt, tt.want, got)
		}
	}
}

func TestFixedDelayIsConstant(t *testing.T) {
	policy := FixedDelay(3, 2*time.Second)

	for attempt := 1; attempt <= 3; attempt++ {
		if got := policy.Wait(attempt); got != 2*time.Second {
			t.Errorf("attempt %d: expected wait 2s, got %v", attempt, got)
		}
	}
}
