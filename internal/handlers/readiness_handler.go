package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"pr-readiness-api/internal/cache"
	"pr-readiness-api/internal/models"

	"github.com/gin-gonic/gin"
)

// GetReadiness handles GET /api/prs/:id/readiness
// The route is guarded by the admission limiter; by the time this runs the
// request has already been admitted. A cache hit from either tier is served
// directly; a miss triggers a fresh timeline fetch and report computation.
func (a *API) GetReadiness(c *gin.Context) {
	pr := a.prFromParam(c)
	if pr == nil {
		return
	}
	ctx := c.Request.Context()

	if report, ok := a.Readiness.Get(ctx, pr.ID); ok {
		c.JSON(http.StatusOK, gin.H{"readiness": report, "cached": true})
		return
	}

	timeline, err := a.timelineFor(ctx, pr, c.GetHeader("x-github-token"))
	if err != nil {
		a.Notifier.Error(ctx, "UpstreamFetchError", err.Error(), map[string]string{
			"endpoint": "readiness", "pr": fmt.Sprintf("%d", pr.ID),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch PR timeline from upstream"})
		return
	}

	report := buildReadinessReport(pr, timeline)
	if err := a.Readiness.Set(ctx, pr.ID, report); err != nil {
		// The report is still served; only durability suffered.
		log.Printf("readiness: caching report for PR %d: %v", pr.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"readiness": report, "cached": false})
}

// GetTimeline handles GET /api/prs/:id/timeline
func (a *API) GetTimeline(c *gin.Context) {
	pr := a.prFromParam(c)
	if pr == nil {
		return
	}
	ctx := c.Request.Context()

	key := cache.TimelineKey(pr.Owner, pr.Repo, pr.Number)
	if timeline, ok := a.Timelines.Get(ctx, key); ok {
		c.JSON(http.StatusOK, gin.H{"timeline": timeline, "cached": true})
		return
	}

	timeline, err := a.timelineFor(ctx, pr, c.GetHeader("x-github-token"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch PR timeline from upstream"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": timeline, "cached": false})
}

// GetReviewAnalysis handles GET /api/prs/:id/review-analysis
// Derived from the cached timeline, so repeated calls cost nothing upstream.
func (a *API) GetReviewAnalysis(c *gin.Context) {
	pr := a.prFromParam(c)
	if pr == nil {
		return
	}

	timeline, err := a.timelineFor(c.Request.Context(), pr, c.GetHeader("x-github-token"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch PR timeline from upstream"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analyzeReviews(timeline)})
}

// timelineFor returns the PR's timeline, from cache when fresh, from upstream
// otherwise. An upstream result is written through to both cache tiers.
func (a *API) timelineFor(ctx context.Context, pr *models.PullRequest, token string) (models.Timeline, error) {
	key := cache.TimelineKey(pr.Owner, pr.Repo, pr.Number)
	if timeline, ok := a.Timelines.Get(ctx, key); ok {
		return timeline, nil
	}

	timeline, err := a.Upstream.FetchTimeline(ctx, pr.Owner, pr.Repo, pr.Number, token)
	if err != nil {
		return models.Timeline{}, err
	}
	if err := a.Timelines.Set(ctx, key, timeline); err != nil {
		log.Printf("timeline: caching %s: %v", key, err)
	}
	return timeline, nil
}

// invalidateCaches drops the PR's cached readiness and timeline from both
// tiers. Both removals are attempted even if one fails.
func (a *API) invalidateCaches(c *gin.Context, pr *models.PullRequest) {
	ctx := c.Request.Context()
	if err := a.Readiness.Invalidate(ctx, pr.ID); err != nil {
		log.Printf("cache: invalidating readiness for PR %d: %v", pr.ID, err)
	}
	key := cache.TimelineKey(pr.Owner, pr.Repo, pr.Number)
	if err := a.Timelines.Invalidate(ctx, key); err != nil {
		log.Printf("cache: invalidating timeline %s: %v", key, err)
	}
}

// analyzeReviews summarizes review activity. A reviewer's latest review wins:
// an approval after a changes-requested review clears the objection.
func analyzeReviews(timeline models.Timeline) models.ReviewAnalysis {
	lastState := make(map[string]string)
	var analysis models.ReviewAnalysis

	for _, e := range timeline.Events {
		switch e.Type {
		case "reviewed":
			if e.Actor != "" {
				if _, seen := lastState[e.Actor]; !seen {
					analysis.Reviewers = append(analysis.Reviewers, e.Actor)
				}
				lastState[e.Actor] = e.State
			}
			if e.CreatedAt.After(analysis.LastReviewAt) {
				analysis.LastReviewAt = e.CreatedAt
			}
		case "commented":
			analysis.Comments++
		}
	}

	for _, state := range lastState {
		switch state {
		case "approved":
			analysis.Approvals++
		case "changes_requested":
			analysis.ChangesRequested++
		}
	}
	return analysis
}

// buildReadinessReport evaluates merge-readiness criteria against the PR's
// current metadata and its review timeline.
func buildReadinessReport(pr *models.PullRequest, timeline models.Timeline) models.ReadinessReport {
	analysis := analyzeReviews(timeline)

	checks := []models.ReadinessCheck{
		{
			Name:   "open",
			Passed: pr.State == models.StateOpen,
			Detail: fmt.Sprintf("state is %s", pr.State),
		},
		{
			Name:   "not_draft",
			Passed: !pr.Draft,
		},
		{
			Name:   "mergeable",
			Passed: pr.Mergeable,
		},
		{
			Name:   "approved",
			Passed: analysis.Approvals >= 1,
			Detail: fmt.Sprintf("%d approval(s)", analysis.Approvals),
		},
		{
			Name:   "no_changes_requested",
			Passed: analysis.ChangesRequested == 0,
			Detail: fmt.Sprintf("%d reviewer(s) requesting changes", analysis.ChangesRequested),
		},
	}

	allPassed := true
	for _, check := range checks {
		if !check.Passed {
			allPassed = false
			break
		}
	}

	verdict := models.VerdictReady
	if !allPassed {
		if pr.State == models.StateOpen {
			verdict = models.VerdictNeedsWork
		} else {
			verdict = models.VerdictNotReady
		}
	}

	return models.ReadinessReport{
		PRID:        pr.ID,
		Verdict:     verdict,
		Checks:      checks,
		Approvals:   analysis.Approvals,
		GeneratedAt: time.Now(),
	}
}
