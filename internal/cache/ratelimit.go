package cache

import (
	"sync"
	"time"
)

// rateWindow tracks requests from one source identity within the current
// fixed window.
type rateWindow struct {
	count       int
	windowStart time.Time
}

// FixedWindowLimiter admits up to limit requests per source identity within a
// fixed window. The count resets fully when the window rolls over rather than
// decaying. Window entries are rewritten on rollover, never proactively
// evicted. Admit never fails; it is pure in-memory bookkeeping.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*rateWindow
	now     func() time.Time
}

// NewFixedWindowLimiter constructs a limiter admitting limit requests per
// identity per window.
func NewFixedWindowLimiter(limit int, window time.Duration, opts Options) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*rateWindow),
		now:     opts.clock(),
	}
}

// Admit reports whether a request from identity is allowed now. When denied,
// retryAfter is the remaining window rounded up to whole seconds, never less
// than 1, so a caller never retries one tick too early.
func (l *FixedWindowLimiter) Admit(identity string) (allowed bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[identity]
	if !ok {
		l.windows[identity] = &rateWindow{count: 1, windowStart: now}
		return true, 0
	}

	elapsed := now.Sub(w.windowStart)
	if elapsed >= l.window {
		w.count = 1
		w.windowStart = now
		return true, 0
	}

	if w.count < l.limit {
		w.count++
		return true, 0
	}

	remaining := l.window - elapsed
	retryAfter = int(remaining / time.Second)
	if remaining%time.Second != 0 {
		retryAfter++
	}
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}

// Len returns the number of source identities currently tracked.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
