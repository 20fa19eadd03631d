package routes

import (
	"github.com/chirp-sns/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupFeedRoutes(protected *gin.RouterGroup, feedController *controllers.FeedController) {
	protected.GET("/feed", feedController.GetHomeFeed)
	protected.GET("/timeline", feedController.GetPublicTimeline)
}
