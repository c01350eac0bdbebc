package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// QuotaSnapshot is the most recent upstream API quota observation.
// Staleness is exposed to callers via CapturedAt, not hidden behind a TTL.
type QuotaSnapshot struct {
	Limit      int64     `json:"limit"`
	Remaining  int64     `json:"remaining"`
	Reset      int64     `json:"reset"`
	Used       int64     `json:"used"`
	CapturedAt time.Time `json:"capturedAt"`
	Status     string    `json:"status"`
}

// QuotaCache is a single-slot, last-write-wins cache for the upstream API
// quota. It is written by whichever caller last observed quota headers and
// read by anything reporting current quota state.
type QuotaCache struct {
	mu   sync.Mutex
	snap QuotaSnapshot
	now  func() time.Time
}

// NewQuotaCache constructs an empty quota cache. Read returns all-zero
// fields until the first Update.
func NewQuotaCache(opts Options) *QuotaCache {
	return &QuotaCache{now: opts.clock()}
}

// Update stores a new quota observation from raw header values. Missing or
// unparsable values coerce to zero; Update never fails.
func (q *QuotaCache) Update(limit, remaining, reset string) {
	l := coerceInt(limit)
	r := coerceInt(remaining)
	rs := coerceInt(reset)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.snap = QuotaSnapshot{
		Limit:      l,
		Remaining:  r,
		Reset:      rs,
		Used:       l - r,
		CapturedAt: q.now(),
		Status:     "active",
	}
}

// Read returns the last stored snapshot verbatim. It does not check
// staleness.
func (q *QuotaCache) Read() QuotaSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snap
}

func coerceInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
