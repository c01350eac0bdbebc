package cache

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter_ThresholdAndDenial(t *testing.T) {
	base := time.Now()
	l := NewFixedWindowLimiter(30, 60*time.Second, Options{Clock: func() time.Time { return base }})

	for i := 0; i < 30; i++ {
		allowed, retryAfter := l.Admit("ip1")
		if !allowed {
			t.Fatalf("request %d was unexpectedly denied", i+1)
		}
		if retryAfter != 0 {
			t.Fatalf("allowed request %d carried retryAfter=%d", i+1, retryAfter)
		}
	}

	allowed, retryAfter := l.Admit("ip1")
	if allowed {
		t.Fatalf("31st request should have been denied")
	}
	if retryAfter < 1 || retryAfter > 60 {
		t.Fatalf("retryAfter out of range [1,60]: %d", retryAfter)
	}
	// With no time elapsed the whole window remains; the hint is exactly
	// the window length, not a second past it.
	if retryAfter != 60 {
		t.Fatalf("expected retryAfter=60 at the start of the window, got %d", retryAfter)
	}
}

func TestFixedWindowLimiter_RetryAfterNeverTooEarly(t *testing.T) {
	base := time.Now()
	clock := base
	l := NewFixedWindowLimiter(1, 60*time.Second, Options{Clock: func() time.Time { return clock }})

	l.Admit("ip1")

	// 30.5s into the window, 29.5s remain; the hint must round up to 30.
	clock = base.Add(30*time.Second + 500*time.Millisecond)
	allowed, retryAfter := l.Admit("ip1")
	if allowed {
		t.Fatalf("expected denial inside the window")
	}
	if retryAfter != 30 {
		t.Fatalf("expected retryAfter=30, got %d", retryAfter)
	}
}

func TestFixedWindowLimiter_WindowRollover(t *testing.T) {
	base := time.Now()
	clock := base
	l := NewFixedWindowLimiter(30, 60*time.Second, Options{Clock: func() time.Time { return clock }})

	for i := 0; i < 30; i++ {
		l.Admit("ip1")
	}
	if allowed, _ := l.Admit("ip1"); allowed {
		t.Fatalf("expected denial once the limit is exhausted")
	}

	// One second past the window the count resets fully, not proportionally.
	clock = base.Add(61 * time.Second)
	if allowed, _ := l.Admit("ip1"); !allowed {
		t.Fatalf("expected admission after window rollover")
	}
	// 29 more fit in the fresh window, proving the count restarted at 1.
	for i := 0; i < 29; i++ {
		if allowed, _ := l.Admit("ip1"); !allowed {
			t.Fatalf("request %d of the fresh window was denied", i+2)
		}
	}
	if allowed, _ := l.Admit("ip1"); allowed {
		t.Fatalf("fresh window should be exhausted after 30 admissions")
	}
}

func TestFixedWindowLimiter_IdentityIsolation(t *testing.T) {
	base := time.Now()
	l := NewFixedWindowLimiter(30, 60*time.Second, Options{Clock: func() time.Time { return base }})

	for i := 0; i < 30; i++ {
		l.Admit("ip1")
	}
	if allowed, _ := l.Admit("ip1"); allowed {
		t.Fatalf("ip1 should be exhausted")
	}
	if allowed, _ := l.Admit("ip2"); !allowed {
		t.Fatalf("exhausting ip1 must not affect ip2")
	}
}
