package cache

import (
	"context"
	"time"
)

// Fixed caching and admission-control parameters. These are deliberate
// constants rather than configuration: readiness results change with every
// push, timelines change less often, and the admission window is sized so a
// dashboard refreshing up to 30 PRs at once stays under the limit.
const (
	ReadinessTTL = 600 * time.Second
	TimelineTTL  = 1800 * time.Second

	RateLimitWindow    = 60 * time.Second
	RateLimitThreshold = 30
)

// Store is the durable tier backing a Tiered cache. Load must surface the
// timestamp the record was stored at alongside the value; the cache cannot
// apply a TTL to a durable record without it. A missing record is reported
// via the bool, not an error.
type Store[K comparable, V any] interface {
	Load(ctx context.Context, key K) (V, time.Time, bool, error)
	Save(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
}

// Options controls construction of the caches and the limiter.
type Options struct {
	// Clock overrides the time source. Nil means time.Now.
	Clock func() time.Time
}

func (o Options) clock() func() time.Time {
	if o.Clock == nil {
		return time.Now
	}
	return o.Clock
}
