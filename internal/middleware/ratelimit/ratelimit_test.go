package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(perMinute int) (*Limiter, *time.Time) {
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	now := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowWithinWindow(t *testing.T) {
	rl, _ := newTestLimiter(2)
	defer rl.Stop()

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("a") {
		t.Error("third request within the minute must be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients are counted separately")
	}
}

func TestAllowResetsAfterMinute(t *testing.T) {
	rl, now := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("a")
	if rl.Allow("a") {
		t.Fatal("second request must be limited")
	}
	*now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("a new window must allow again")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")
	*now = now.Add(11 * time.Minute)
	rl.Allow("c")

	if removed := rl.cleanupStaleEntries(); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d, want 1", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
