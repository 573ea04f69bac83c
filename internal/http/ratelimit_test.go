package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsBurstUpToLimit(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < writesPerMinute; i++ {
		if !rl.allow("203.0.113.9") {
			t.Fatalf("request %d denied, want the first %d allowed", i+1, writesPerMinute)
		}
	}
	if rl.allow("203.0.113.9") {
		t.Errorf("request %d allowed, want denied past the limit", writesPerMinute+1)
	}

	// Other clients are tracked independently.
	if !rl.allow("198.51.100.7") {
		t.Error("fresh client denied while another is throttled")
	}
}

func TestRateLimiterResetsAfterQuietMinute(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < writesPerMinute+1; i++ {
		rl.allow("203.0.113.9")
	}
	if rl.allow("203.0.113.9") {
		t.Fatal("client allowed while over the limit")
	}

	rl.mu.Lock()
	rl.clients["203.0.113.9"].lastRequest = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	if !rl.allow("203.0.113.9") {
		t.Error("client still denied after a quiet minute")
	}
}

func TestRateLimiterDropsStaleClients(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.allow("203.0.113.9")
	rl.mu.Lock()
	rl.clients["203.0.113.9"].lastRequest = time.Now().Add(-clientStaleAfter - time.Minute)
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	rl.mu.Lock()
	_, exists := rl.clients["203.0.113.9"]
	rl.mu.Unlock()
	if exists {
		t.Error("stale client still tracked after cleanup")
	}
}
