package routes

import (
	"pr-readiness-api/internal/handlers"
	"pr-readiness-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(api *handlers.API) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, x-github-token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "PR Readiness API is running in Health Check Endpoint",
		})
	})

	// Public routes (no authentication required)
	apiGroup := ginRouter.Group("/api")
	{
		apiGroup.POST("/login", api.Login)

		// Read-only tracking data
		apiGroup.GET("/prs", api.ListPRs)
		apiGroup.GET("/updates", api.UpdatesCheck)
		apiGroup.GET("/prs/:id", api.GetPR)
		apiGroup.GET("/prs/:id/timeline", api.GetTimeline)
		apiGroup.GET("/prs/:id/review-analysis", api.GetReviewAnalysis)
		apiGroup.GET("/repos", api.ListRepos)
		apiGroup.GET("/authors", api.ListAuthors)
		apiGroup.GET("/rate-limit", api.RateLimitStatus)
		apiGroup.GET("/status", api.Status)

		// Readiness is the expensive path; admission control runs before
		// any cache lookup.
		apiGroup.GET("/prs/:id/readiness", middleware.RateLimit(api.Limiter), api.GetReadiness)

		// GitHub delivers webhooks without our JWT
		apiGroup.POST("/github/webhook", api.GithubWebhook)
		apiGroup.POST("/client-error", api.ClientError)
		apiGroup.POST("/test-error", api.TriggerTestError)
	}

	// Protected routes (authentication required)
	protectedRoutes := apiGroup.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.POST("/prs", api.AddPR)
		protectedRoutes.DELETE("/prs/:id", api.RemovePR)
		protectedRoutes.POST("/refresh", api.RefreshPR)
		protectedRoutes.POST("/refresh-batch", api.BatchRefresh)
		protectedRoutes.GET("/ws", api.WebSocket)
		// Users endpoint
		protectedRoutes.GET("/users", handlers.GetAllUsers)
	}

	return ginRouter
}
