package main

import (
	"log"
	"os"

	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/config"
	"github.com/chirp-sns/api-go/controllers"
	"github.com/chirp-sns/api-go/middleware"
	"github.com/chirp-sns/api-go/ratelimit"
	"github.com/chirp-sns/api-go/routes"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Initialize database
	db := config.InitDB()

	// Redis backs the rate limiter and the page cache
	rdb := config.NewRedisClient()
	limiter := ratelimit.NewRedisLimiter(rdb)
	pageCache := cache.NewPageCache(rdb)

	var store controllers.ObjectStore = controllers.NewR2Store()

	// Create a new Gin router
	r := gin.Default()
	r.Use(middleware.Metrics())

	// Initialize routes
	routes.SetupRoutes(r, db, limiter, pageCache, store)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
