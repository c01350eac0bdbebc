package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"pr-readiness-api/internal/cache"
	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/models"

	"github.com/gin-gonic/gin"
)

// RefreshRequest represents the request payload for refreshing one PR
type RefreshRequest struct {
	ID int64 `json:"id" binding:"required"`
}

// BatchRefreshRequest represents the request payload for refreshing many PRs
type BatchRefreshRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

// RefreshPR handles POST /api/refresh
// Re-fetches the PR from upstream, persists the new metadata and invalidates
// the cached readiness and timeline so the next read recomputes.
func (a *API) RefreshPR(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var pr models.PullRequest
	if err := database.GetDB().Where("id = ?", req.ID).First(&pr).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "PR not found"})
		return
	}

	if err := a.refreshOne(c.Request.Context(), &pr, c.GetHeader("x-github-token")); err != nil {
		a.Notifier.Error(c.Request.Context(), "RefreshError", err.Error(), map[string]string{
			"pr": fmt.Sprintf("%d", pr.ID),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh PR from upstream"})
		return
	}

	c.JSON(http.StatusOK, pr)
}

// BatchRefresh handles POST /api/refresh-batch
// Refreshes each requested PR in turn; per-PR failures are reported without
// aborting the batch.
func (a *API) BatchRefresh(c *gin.Context) {
	var req BatchRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := c.GetHeader("x-github-token")
	refreshed := make([]int64, 0, len(req.IDs))
	failed := make([]int64, 0)

	for _, id := range req.IDs {
		var pr models.PullRequest
		if err := database.GetDB().Where("id = ?", id).First(&pr).Error; err != nil {
			failed = append(failed, id)
			continue
		}
		if err := a.refreshOne(c.Request.Context(), &pr, token); err != nil {
			log.Printf("refresh: PR %d: %v", id, err)
			failed = append(failed, id)
			continue
		}
		refreshed = append(refreshed, id)
	}

	c.JSON(http.StatusOK, gin.H{
		"refreshed": refreshed,
		"failed":    failed,
	})
}

// RefreshAll re-fetches every tracked PR. Used by the hourly background
// refresher; individual failures are logged and do not stop the sweep.
func (a *API) RefreshAll(ctx context.Context) error {
	var prs []models.PullRequest
	if err := database.GetDB().Find(&prs).Error; err != nil {
		return fmt.Errorf("listing PRs for refresh: %w", err)
	}

	var failures int
	for i := range prs {
		if err := a.refreshOne(ctx, &prs[i], ""); err != nil {
			log.Printf("refresh: PR %d: %v", prs[i].ID, err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("refreshing %d of %d PRs failed", failures, len(prs))
	}
	return nil
}

// refreshOne updates one PR from upstream and drops its cached results.
func (a *API) refreshOne(ctx context.Context, pr *models.PullRequest, token string) error {
	data, err := a.Upstream.FetchPullRequest(ctx, pr.Owner, pr.Repo, pr.Number, token)
	if err != nil {
		return err
	}

	pr.Title = data.Title
	pr.Author = data.Author
	pr.State = data.State
	pr.Draft = data.Draft
	pr.Mergeable = data.Mergeable
	pr.Additions = data.Additions
	pr.Deletions = data.Deletions
	pr.HTMLURL = data.HTMLURL
	pr.HeadSHA = data.HeadSHA
	pr.LastFetchedAt = time.Now()

	if err := database.GetDB().Save(pr).Error; err != nil {
		return fmt.Errorf("saving refreshed PR %d: %w", pr.ID, err)
	}

	if err := a.Readiness.Invalidate(ctx, pr.ID); err != nil {
		log.Printf("cache: invalidating readiness for PR %d: %v", pr.ID, err)
	}
	key := cache.TimelineKey(pr.Owner, pr.Repo, pr.Number)
	if err := a.Timelines.Invalidate(ctx, key); err != nil {
		log.Printf("cache: invalidating timeline %s: %v", key, err)
	}

	a.broadcast("pr_updated", pr.ID)
	return nil
}
