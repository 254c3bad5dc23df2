package service_test

import (
	"testing"
	"time"

	"github.com/tripnosis/tripnosis/internal/service"
)

func TestRateLimiter_AllowsUpToBurst(t *testing.T) {
	rl := service.NewRateLimiter(0.001, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}

	if rl.Allow("test-key") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestRateLimiter_DifferentKeysAreIndependent(t *testing.T) {
	rl := service.NewRateLimiter(0.001, 1)
	defer rl.Stop()

	if !rl.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if rl.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !rl.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestRateLimiter_ZeroRateNeverRefills(t *testing.T) {
	rl := service.NewRateLimiter(0, 2)
	defer rl.Stop()

	if !rl.Allow("k") || !rl.Allow("k") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestRateLimiter_SweepEvictsIdleKeys(t *testing.T) {
	rl := service.NewRateLimiter(0, 1)
	defer rl.Stop()

	if !rl.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if n := rl.Sweep(time.Now()); n != 0 {
		t.Fatalf("expected no eviction of a fresh key, got %d", n)
	}
	if n := rl.Sweep(time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}

	// An evicted key starts with a full bucket again.
	if !rl.Allow("k") {
		t.Fatal("request after eviction should be allowed")
	}
}
