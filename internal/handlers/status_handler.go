package handlers

import (
	"net/http"
	"time"

	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/models"

	"github.com/gin-gonic/gin"
)

// RateLimitStatus handles GET /api/rate-limit
// Returns the last observed upstream quota snapshot verbatim, all-zero if no
// quota headers have been seen yet. CapturedAt lets the frontend judge
// staleness itself.
func (a *API) RateLimitStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.Quota.Read())
}

// Status handles GET /api/status
func (a *API) Status(c *gin.Context) {
	var total int64
	if err := database.GetDB().Model(&models.PullRequest{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"trackedPRs":        total,
		"cachedReadiness":   a.Readiness.Len(),
		"cachedTimelines":   a.Timelines.Len(),
		"limiterIdentities": a.Limiter.Len(),
		"uptimeSeconds":     int(time.Since(a.StartedAt).Seconds()),
	})
}
