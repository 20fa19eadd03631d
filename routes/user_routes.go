package routes

import (
	"github.com/chirp-sns/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController) {
	users := protected.Group("/users")
	{
		users.GET("/:username", userController.GetUserProfile)
	}
}
