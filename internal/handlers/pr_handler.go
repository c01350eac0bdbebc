package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddPRRequest represents the request payload for tracking a new PR
type AddPRRequest struct {
	Owner  string `json:"owner" binding:"required"`
	Repo   string `json:"repo" binding:"required"`
	Number int    `json:"number" binding:"required"`
}

/*
*
ListPRs handles GET /api/prs
Returns tracked PRs with optional repo/org/author filters, pagination and
sorting on created_at or updated_at.
*/
func (a *API) ListPRs(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	perPageStr := c.DefaultQuery("per_page", "30")
	sortBy := strings.ToLower(c.DefaultQuery("sort_by", "updated_at"))
	sortDir := strings.ToLower(c.DefaultQuery("sort_dir", "desc"))

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(perPageStr)
	if err != nil {
		perPage = 30
	}
	if perPage < 10 {
		perPage = 10
	}
	if perPage > 1000 {
		perPage = 1000
	}

	offset := (page - 1) * perPage

	if sortBy != "created_at" && sortBy != "updated_at" && sortBy != "number" {
		sortBy = "updated_at"
	}
	if sortDir != "asc" {
		sortDir = "desc"
	}
	order := sortBy + " " + sortDir

	db := database.GetDB()
	query := db.Model(&models.PullRequest{})
	if repo := c.Query("repo"); repo != "" {
		query = query.Where("repo = ?", repo)
	}
	if org := c.Query("org"); org != "" {
		query = query.Where("owner = ?", org)
	}
	if author := c.Query("author"); author != "" {
		query = query.Where("author = ?", author)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count PRs",
		})
		return
	}

	var prs []models.PullRequest
	result := query.Session(&gorm.Session{}).Order(order).Limit(perPage).Offset(offset).Find(&prs)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch PRs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prs":      prs,
		"count":    len(prs),
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

/*
*
AddPR handles POST /api/prs
Fetches current metadata from upstream and starts tracking the PR.
*/
func (a *API) AddPR(c *gin.Context) {
	var req AddPRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	db := database.GetDB()

	var existing models.PullRequest
	err := db.Where("owner = ? AND repo = ? AND number = ?", req.Owner, req.Repo, req.Number).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "PR is already tracked", "id": existing.ID})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch PR"})
		return
	}

	data, err := a.Upstream.FetchPullRequest(c.Request.Context(), req.Owner, req.Repo, req.Number, c.GetHeader("x-github-token"))
	if err != nil {
		a.Notifier.Error(c.Request.Context(), "UpstreamFetchError", err.Error(), map[string]string{
			"owner": req.Owner, "repo": req.Repo, "number": strconv.Itoa(req.Number),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch PR from upstream"})
		return
	}

	pr := models.PullRequest{
		Owner:         req.Owner,
		Repo:          req.Repo,
		Number:        req.Number,
		Title:         data.Title,
		Author:        data.Author,
		State:         data.State,
		Draft:         data.Draft,
		Mergeable:     data.Mergeable,
		Additions:     data.Additions,
		Deletions:     data.Deletions,
		HTMLURL:       data.HTMLURL,
		HeadSHA:       data.HeadSHA,
		LastFetchedAt: time.Now(),
	}
	if result := db.Create(&pr); result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create PR",
		})
		return
	}

	a.broadcast("pr_added", pr.ID)
	c.JSON(http.StatusCreated, pr)
}

// GetPR handles GET /api/prs/:id
func (a *API) GetPR(c *gin.Context) {
	pr := a.prFromParam(c)
	if pr == nil {
		return
	}
	c.JSON(http.StatusOK, pr)
}

// RemovePR handles DELETE /api/prs/:id
// Stops tracking a PR and drops its cached results from both tiers.
func (a *API) RemovePR(c *gin.Context) {
	pr := a.prFromParam(c)
	if pr == nil {
		return
	}

	if result := database.GetDB().Delete(pr); result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete PR",
		})
		return
	}

	a.invalidateCaches(c, pr)
	a.broadcast("pr_removed", pr.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "PR removed successfully",
		"id":      pr.ID,
	})
}

// ListRepos handles GET /api/repos
// Returns each tracked owner/repo pair with its PR count.
func (a *API) ListRepos(c *gin.Context) {
	type row struct {
		Owner string `json:"owner"`
		Repo  string `json:"repo"`
		Count int64  `json:"count"`
	}
	var rows []row
	if err := database.GetDB().Model(&models.PullRequest{}).
		Select("owner, repo, COUNT(*) as count").
		Group("owner, repo").
		Order("owner, repo").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch repos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"repos": rows,
		"count": len(rows),
	})
}

// ListAuthors handles GET /api/authors
func (a *API) ListAuthors(c *gin.Context) {
	type row struct {
		Author string `json:"author"`
		Count  int64  `json:"count"`
	}
	var rows []row
	if err := database.GetDB().Model(&models.PullRequest{}).
		Select("author, COUNT(*) as count").
		Where("author <> ''").
		Group("author").
		Order("author").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch authors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authors": rows,
		"count":   len(rows),
	})
}

// UpdatesCheck handles GET /api/updates
// Cheap polling endpoint: the most recent change stamp across tracked PRs.
func (a *API) UpdatesCheck(c *gin.Context) {
	var latest struct {
		UpdatedAt *time.Time
	}
	if err := database.GetDB().Model(&models.PullRequest{}).
		Select("MAX(updated_at) as updated_at").
		Scan(&latest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check updates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lastUpdatedAt": latest.UpdatedAt,
	})
}

// prFromParam resolves the :id route param to a tracked PR, writing the error
// response itself and returning nil when resolution fails.
func (a *API) prFromParam(c *gin.Context) *models.PullRequest {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PR ID"})
		return nil
	}

	var pr models.PullRequest
	result := database.GetDB().Where("id = ?", id).First(&pr)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "PR not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch PR"})
		}
		return nil
	}
	return &pr
}
