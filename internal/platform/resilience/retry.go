package resilience

import (
	"context"
	"time"
)

// RetryPolicy is the single retry configuration shared by every outbound
// dependency call. Classify decides whether an error is worth another
// attempt; a nil Classify retries everything.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Classify func(error) bool
}

func NewRetryPolicy(attempts int, delay time.Duration, classify func(error) bool) RetryPolicy {
	if attempts < 0 {
		attempts = 0
	}
	if delay < 0 {
		delay = 0
	}
	return RetryPolicy{
		Attempts: attempts,
		Delay:    delay,
		Classify: classify,
	}
}

// Do runs fn up to Attempts+1 times, sleeping Delay*(attempt+1) between
// tries. Fatal errors (Classify returns false) and context cancellation
// stop the loop immediately.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Classify != nil && !p.Classify(lastErr) {
			return lastErr
		}
		if attempt == p.Attempts {
			break
		}

		backoff := p.Delay * time.Duration(attempt+1)
		if backoff <= 0 {
			continue
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
