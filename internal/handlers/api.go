package handlers

import (
	"encoding/json"
	"time"

	"pr-readiness-api/internal/cache"
	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/github"
	"pr-readiness-api/internal/models"
	"pr-readiness-api/internal/notify"
	"pr-readiness-api/internal/realtime"
	"pr-readiness-api/internal/store"
)

// API holds the long-lived service state: one cache instance per record
// family, the admission limiter, the quota slot, the upstream client and the
// realtime hub. Handlers are methods on it so no cache or limiter ever lives
// in package-level mutable state.
type API struct {
	Readiness *cache.Tiered[int64, models.ReadinessReport]
	Timelines *cache.Tiered[string, models.Timeline]
	Limiter   *cache.FixedWindowLimiter
	Quota     *cache.QuotaCache
	Upstream  github.Client
	Hub       *realtime.Hub
	Notifier  *notify.Notifier
	StartedAt time.Time
}

// NewAPI wires the caches over the durable store and returns the service.
// database.InitDB (or a test DB) must have run first.
func NewAPI(upstream github.Client, quota *cache.QuotaCache, notifier *notify.Notifier) *API {
	db := database.GetDB()
	return &API{
		Readiness: cache.NewTiered[int64, models.ReadinessReport](
			store.NewReadinessStore(db), cache.ReadinessTTL, cache.Options{}),
		Timelines: cache.NewTiered[string, models.Timeline](
			store.NewTimelineStore(db), cache.TimelineTTL, cache.Options{}),
		Limiter:   cache.NewFixedWindowLimiter(cache.RateLimitThreshold, cache.RateLimitWindow, cache.Options{}),
		Quota:     quota,
		Upstream:  upstream,
		Hub:       realtime.NewHub(),
		Notifier:  notifier,
		StartedAt: time.Now(),
	}
}

// broadcast pushes a PR event to every connected dashboard client.
func (a *API) broadcast(eventType string, prID int64) {
	evt := map[string]any{
		"type":    eventType,
		"prId":    prID,
		"version": 1,
	}
	if bytes, err := json.Marshal(evt); err == nil {
		a.Hub.Broadcast(bytes)
	}
}
