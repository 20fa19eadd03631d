package routes

import (
	"github.com/chirp-sns/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupInteractionRoutes(protected *gin.RouterGroup, interactionController *controllers.InteractionController) {
	// Post interactions
	posts := protected.Group("/posts")
	{
		posts.POST("/:id/like", interactionController.ToggleLike)
	}

	// User interactions
	users := protected.Group("/users")
	{
		users.POST("/id/:id/follow", interactionController.ToggleFollow)
		users.GET("/id/:id/followers", interactionController.GetUserFollowers)
		users.GET("/id/:id/following", interactionController.GetUserFollowing)
	}
}
