package media

import (
	"context"
	"time"
)

// DefaultMaxAttempts is the attempt budget shared by every retried stage
const DefaultMaxAttempts = 3

// RetryPolicy is a value describing how a fallible stage is re-attempted:
// a maximum attempt count and a wait computed from the 1-based index of the
// attempt that just failed.
type RetryPolicy struct {
	MaxAttempts int
	Wait        func(attempt int) time.Duration
}

// FixedDelay returns a policy waiting the same duration between every attempt
func FixedDelay(attempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		Wait:        func(int) time.Duration { return delay },
	}
}

// LinearBackoff returns a policy whose wait grows with the attempt index:
// unit, 2*unit, 3*unit, ...
func LinearBackoff(attempts int, unit time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		Wait:        func(attempt int) time.Duration { return time.Duration(attempt) * unit },
	}
}

// Do runs fn until it succeeds or the attempt budget is exhausted, sleeping
// per the policy between attempts. No wait follows the final attempt. The
// last attempt's error is returned on exhaustion; a cancelled context cuts
// the loop short with ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if err := p.wait(ctx, attempt); err != nil {
			return err
		}
	}
	return lastErr
}

func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	var delay time.Duration
	if p.Wait != nil {
		delay = p.Wait(attempt)
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
