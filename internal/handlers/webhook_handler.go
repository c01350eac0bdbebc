package handlers

import (
	"net/http"

	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/models"

	"github.com/gin-gonic/gin"
)

// webhookPayload is the subset of a GitHub pull_request event we act on.
type webhookPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		State  string `json:"state"`
		Draft  bool   `json:"draft"`
		Merged bool   `json:"merged"`
	} `json:"pull_request"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// GithubWebhook handles POST /api/github/webhook
// A pull_request event for a tracked PR invalidates its cached readiness and
// timeline and updates the stored metadata. Events for untracked PRs are
// acknowledged and ignored.
func (a *API) GithubWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	number := payload.Number
	if number == 0 {
		number = payload.PullRequest.Number
	}
	if number == 0 || payload.Repository.Owner.Login == "" {
		c.JSON(http.StatusAccepted, gin.H{"ignored": true, "reason": "not a pull_request event"})
		return
	}

	var pr models.PullRequest
	err := database.GetDB().
		Where("owner = ? AND repo = ? AND number = ?",
			payload.Repository.Owner.Login, payload.Repository.Name, number).
		First(&pr).Error
	if err != nil {
		c.JSON(http.StatusAccepted, gin.H{"ignored": true, "reason": "PR not tracked"})
		return
	}

	if payload.PullRequest.Title != "" {
		pr.Title = payload.PullRequest.Title
	}
	if payload.PullRequest.State != "" {
		pr.State = models.PRState(payload.PullRequest.State)
		if payload.PullRequest.Merged {
			pr.State = models.StateMerged
		}
	}
	pr.Draft = payload.PullRequest.Draft
	if err := database.GetDB().Save(&pr).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update PR"})
		return
	}

	a.invalidateCaches(c, &pr)
	a.broadcast("pr_updated", pr.ID)

	c.JSON(http.StatusOK, gin.H{"ok": true, "action": payload.Action, "id": pr.ID})
}

// ClientError handles POST /api/client-error
// Forwards frontend-reported errors to the error webhook. Always succeeds:
// a broken reporting path must not break the dashboard.
func (a *API) ClientError(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		body = map[string]any{}
	}

	errType := "FrontendError"
	if v, ok := body["error_type"].(string); ok && v != "" {
		errType = v
	}
	message := "Unknown frontend error"
	if v, ok := body["message"].(string); ok && v != "" {
		message = v
	}

	fields := map[string]string{"source": "frontend"}
	for k, v := range body {
		if k == "error_type" || k == "message" {
			continue
		}
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}

	a.Notifier.Error(c.Request.Context(), errType, message, fields)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// TriggerTestError handles POST /api/test-error
// Deliberately reports a synthetic error so the notifier delivery path can be
// verified end to end without breaking anything real.
func (a *API) TriggerTestError(c *gin.Context) {
	a.Notifier.Error(c.Request.Context(), "TestError",
		"Test error triggered intentionally from /api/test-error",
		map[string]string{"handler": "test_error"})
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Test error triggered intentionally",
	})
}
