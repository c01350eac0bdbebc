package handlers

import (
	"net/http"
	"time"

	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/models"

	"github.com/gin-gonic/gin"
)

type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	MemberSince time.Time `json:"memberSince"`
	AuthoredPRs int64     `json:"authoredPRs"`
}

// GetAllUsers returns all registered dashboard users, each annotated with the
// number of tracked PRs they authored (protected)
// GET /api/users
func GetAllUsers(c *gin.Context) {
	db := database.GetDB()

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	// One grouped count instead of a query per user
	var counts []struct {
		Author string
		Count  int64
	}
	if err := db.Model(&models.PullRequest{}).
		Select("author, COUNT(*) as count").
		Group("author").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	byAuthor := make(map[string]int64, len(counts))
	for _, row := range counts {
		byAuthor[row.Author] = row.Count
	}

	// Map to safe response payload
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:          u.ID,
			Username:    u.Username,
			MemberSince: u.CreatedAt,
			AuthoredPRs: byAuthor[u.Username],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}
