package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestSourceLimiter_SpacesSequentialCalls(t *testing.T) {
	l := NewSourceLimiter()
	// 600/min -> one request every 100ms, fast enough to test wall-clock spacing.
	if err := l.Register("football-data", 600); err != nil {
		t.Fatalf("register: %v", err)
	}

	const calls = 4
	start := time.Now()
	for i := 0; i < calls; i++ {
		if err := l.Wait(context.Background(), "football-data"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}

	minElapsed := time.Duration(calls-1) * 100 * time.Millisecond
	if elapsed := time.Since(start); elapsed < minElapsed {
		t.Fatalf("expected elapsed >= %v, got %v", minElapsed, elapsed)
	}
}

func TestSourceLimiter_ScopedPerSource(t *testing.T) {
	l := NewSourceLimiter()
	if err := l.Register("slow-source", 1); err != nil {
		t.Fatalf("register: %v", err)
	}

	// First token for slow-source is available immediately; the other
	// source has no budget registered and must never block.
	if err := l.Wait(context.Background(), "slow-source"); err != nil {
		t.Fatalf("wait slow-source: %v", err)
	}

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := l.Wait(context.Background(), "other-source"); err != nil {
			t.Fatalf("wait other-source: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("unregistered source must not be throttled, waited %v", elapsed)
	}
}

func TestSourceLimiter_WaitCancelled(t *testing.T) {
	l := NewSourceLimiter()
	if err := l.Register("football-data", 1); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Drain the only available token, then cancel while waiting.
	if err := l.Wait(context.Background(), "football-data"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "football-data"); err == nil {
		t.Fatal("expected error from cancelled wait")
	}
}

func TestSourceLimiter_RegisterValidation(t *testing.T) {
	l := NewSourceLimiter()
	if err := l.Register("", 10); err == nil {
		t.Fatal("expected error for empty source name")
	}
	if err := l.Register("football-data", 0); err == nil {
		t.Fatal("expected error for zero rate")
	}
}

func TestSourceLimiter_Delay(t *testing.T) {
	l := NewSourceLimiter()
	if err := l.Register("football-data", 10); err != nil {
		t.Fatalf("register: %v", err)
	}

	if got := l.Delay("football-data"); got < 5.9 || got > 6.1 {
		t.Fatalf("expected ~6s spacing for 10/min, got %f", got)
	}
	if got := l.Delay("missing"); got != 0 {
		t.Fatalf("expected zero delay for unknown source, got %f", got)
	}
}
