package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_DelayFrom(t *testing.T) {
	l := New(250 * time.Millisecond)
	now := time.Now()

	if d := l.DelayFrom(now); d != 0 {
		t.Errorf("first reservation delay = %s, want 0", d)
	}

	d := l.DelayFrom(now)
	if d < 240*time.Millisecond || d > 250*time.Millisecond {
		t.Errorf("second reservation delay = %s, want ~250ms", d)
	}

	if d := l.DelayFrom(now.Add(time.Second)); d != 0 {
		t.Errorf("delay after refill = %s, want 0", d)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0)
	for i := 0; i < 100; i++ {
		if d := l.Delay(); d != 0 {
			t.Fatalf("unlimited limiter delayed %s", d)
		}
	}
	if l.Interval() != 0 {
		t.Errorf("Interval() = %s, want 0", l.Interval())
	}
}

func TestLimiter_Interval(t *testing.T) {
	l := New(time.Second)
	if got := l.Interval(); got != time.Second {
		t.Errorf("Interval() = %s, want 1s", got)
	}

	if got := New(250 * time.Millisecond).Interval(); got != 250*time.Millisecond {
		t.Errorf("Interval() = %s, want 250ms", got)
	}
}
