package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlight_SharesInFlightResult(t *testing.T) {
	var g SingleFlight
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	var sharedCount atomic.Int32

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, _ = g.Do("quality", func() (any, error) {
			calls.Add(1)
			close(started)
			<-release
			return "report", nil
		})
	}()

	<-started
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, err, shared := g.Do("quality", func() (any, error) {
				calls.Add(1)
				return "report", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if val != "report" {
				t.Errorf("unexpected value: %v", val)
			}
			if shared {
				sharedCount.Add(1)
			}
		}()
	}

	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}
	if sharedCount.Load() != 3 {
		t.Fatalf("expected 3 shared results, got %d", sharedCount.Load())
	}
}

func TestSingleFlight_DistinctKeysDoNotShare(t *testing.T) {
	var g SingleFlight
	var calls atomic.Int32

	for _, key := range []string{"teams", "matches"} {
		_, _, shared := g.Do(key, func() (any, error) {
			calls.Add(1)
			return nil, nil
		})
		if shared {
			t.Fatalf("sequential call for key %q must not be shared", key)
		}
	}

	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}
