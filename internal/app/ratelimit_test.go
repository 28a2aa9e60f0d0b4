package app

import (
	"testing"
	"time"
)

func TestStatsLimiter_Allow(t *testing.T) {
	rl := NewStatsLimiter(3, time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := range 3 {
		if !rl.Allow("s1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("s1") {
		t.Error("fourth attempt inside the window should be denied")
	}
	if !rl.Allow("s2") {
		t.Error("other sessions have their own window")
	}

	now = now.Add(1100 * time.Millisecond)
	if !rl.Allow("s1") {
		t.Error("attempt after the window should be allowed")
	}
}

func TestStatsLimiter_Disabled(t *testing.T) {
	var nilLimiter *StatsLimiter
	zero := NewStatsLimiter(0, time.Second)

	for i := range 100 {
		if !nilLimiter.Allow("s") || !zero.Allow("s") {
			t.Fatalf("disabled limiter denied attempt %d", i)
		}
	}
	nilLimiter.Forget("s")
	zero.Forget("s")
}

func TestStatsLimiter_Forget(t *testing.T) {
	rl := NewStatsLimiter(1, time.Hour)
	rl.Allow("s1")
	if rl.Allow("s1") {
		t.Fatal("second attempt should be denied")
	}
	rl.Forget("s1")
	if !rl.Allow("s1") {
		t.Error("Forget() should reset the window")
	}
}
