package routes

import (
	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/controllers"
	"github.com/chirp-sns/api-go/middleware"
	"github.com/chirp-sns/api-go/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, limiter ratelimit.Limiter, pageCache *cache.PageCache, store controllers.ObjectStore) {
	// Initialize controllers
	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, limiter, pageCache)
	interactionController := controllers.NewInteractionController(db, limiter, pageCache)
	feedController := controllers.NewFeedController(db, pageCache)
	userController := controllers.NewUserController(db, limiter, pageCache)
	uploadController := controllers.NewUploadController(db, limiter, store, pageCache)
	webhookController := controllers.NewWebhookController(db)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)
		public.POST("/webhooks/identity", webhookController.HandleIdentityEvent)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", authController.Logout)
		protected.POST("/refresh-token", authController.RefreshToken)
		protected.GET("/profile", authController.GetProfile)
		protected.PUT("/profile", userController.UpdateProfile)

		SetupPostRoutes(protected, postController)
		SetupInteractionRoutes(protected, interactionController)
		SetupFeedRoutes(protected, feedController)
		SetupUserRoutes(protected, userController)
		SetupUploadRoutes(protected, uploadController)
	}
}
