package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// SourceLimiter enforces a per-source request budget against upstream
// providers. A source configured for N requests/minute refills at N/60
// tokens per second with burst 1, which spaces consecutive calls at
// least 60/N seconds apart.
type SourceLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewSourceLimiter() *SourceLimiter {
	return &SourceLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// Register installs the budget for one source. Re-registering replaces
// the previous limiter, so a config reload resets the token bucket.
func (l *SourceLimiter) Register(source string, requestsPerMinute int) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return fmt.Errorf("source name is required")
	}
	if requestsPerMinute < 1 {
		return fmt.Errorf("requests per minute must be >= 1, got %d", requestsPerMinute)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiters[source] = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	return nil
}

// Wait blocks until the source may issue its next request or the
// context is cancelled. Unknown sources pass through without delay.
func (l *SourceLimiter) Wait(ctx context.Context, source string) error {
	l.mu.Lock()
	limiter := l.limiters[strings.TrimSpace(source)]
	l.mu.Unlock()

	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait source=%s: %w", source, err)
	}
	return nil
}

// Delay reports the configured minimum spacing between requests for a
// source, in seconds. Used by health reporting.
func (l *SourceLimiter) Delay(source string) float64 {
	l.mu.Lock()
	limiter := l.limiters[strings.TrimSpace(source)]
	l.mu.Unlock()

	if limiter == nil || limiter.Limit() <= 0 {
		return 0
	}
	return 1.0 / float64(limiter.Limit())
}
