package main

import (
	"context"
	"log"
	"os"
	"time"

	"pr-readiness-api/internal/cache"
	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/github"
	"pr-readiness-api/internal/handlers"
	"pr-readiness-api/internal/notify"
	"pr-readiness-api/internal/routes"
)

func main() {
	// Init database
	database.InitDB()

	// Wire the service: quota slot first so the upstream client can feed it
	quota := cache.NewQuotaCache(cache.Options{})
	upstream := github.NewHTTPClient(os.Getenv("GITHUB_API_URL"), quota)
	notifier := notify.New(os.Getenv("SLACK_ERROR_WEBHOOK"))
	api := handlers.NewAPI(upstream, quota, notifier)

	// Hourly background refresh keeps tracked PRs current without waiting
	// for dashboard traffic
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := api.RefreshAll(context.Background()); err != nil {
				log.Println("scheduled refresh:", err)
				notifier.Error(context.Background(), "ScheduledRefreshError", err.Error(), map[string]string{
					"handler": "scheduled_refresh",
				})
			}
		}
	}()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(api)

	// Start server
	port := ":8008" // This is customizable based on the environment
	log.Printf("Server starting on port %s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/prs")
	log.Println("  POST   /api/prs")
	log.Println("  GET    /api/prs/:id")
	log.Println("  GET    /api/prs/:id/readiness")
	log.Println("  GET    /api/prs/:id/timeline")
	log.Println("  GET    /api/prs/:id/review-analysis")
	log.Println("  POST   /api/refresh")
	log.Println("  POST   /api/refresh-batch")
	log.Println("  POST   /api/github/webhook")
	log.Println("  GET    /api/rate-limit")
	log.Println("  GET    /api/status")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
