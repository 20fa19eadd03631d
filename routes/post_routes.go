package routes

import (
	"github.com/chirp-sns/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupPostRoutes(protected *gin.RouterGroup, postController *controllers.PostController) {
	posts := protected.Group("/posts")
	{
		posts.POST("", postController.CreatePost)
		posts.GET("/:id", postController.GetPostDetail)
		posts.DELETE("/:id", postController.DeletePost)
	}

	users := protected.Group("/users")
	{
		users.GET("/:username/posts", postController.GetUserPosts)
	}
}
