package routes

import (
	"github.com/chirp-sns/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUploadRoutes(protected *gin.RouterGroup, uploadController *controllers.UploadController) {
	protected.POST("/upload", uploadController.UploadImage)
}
