package types

import (
	"context"
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := NewRealClock()

	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, want between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := NewRealClock()

	start := clock.Now().Add(-time.Second)
	if d := clock.Since(start); d < time.Second {
		t.Errorf("Since() = %v, want at least 1s", d)
	}
}

func TestRealClock_NewTimer(t *testing.T) {
	clock := NewRealClock()

	timer := clock.NewTimer(time.Millisecond)
	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Error("timer did not fire")
	}

	if timer.Stop() {
		t.Error("Stop() = true on an expired timer")
	}
}

func TestRealClock_After(t *testing.T) {
	clock := NewRealClock()

	select {
	case <-clock.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Error("After channel did not deliver")
	}
}

func TestClockFromContext(t *testing.T) {
	clock := NewRealClock()
	ctx := WithClock(context.Background(), clock)

	if got := ClockFromContext(ctx); got != clock {
		t.Errorf("ClockFromContext() = %v, want the stored clock", got)
	}
}

func TestClockFromContext_Default(t *testing.T) {
	got := ClockFromContext(context.Background())
	if got == nil {
		t.Fatal("ClockFromContext() = nil, want a real clock fallback")
	}

	if d := got.Since(got.Now()); d > time.Second {
		t.Errorf("fallback clock drifts: Since(Now()) = %v", d)
	}
}
