package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-ride/api-go/controllers"
)

func SetupUploadRoutes(r *gin.RouterGroup, uploadController *controllers.UploadController) {
	upload := r.Group("/upload")
	{
		// Base64 image upload (5MB cap)
		upload.POST("/image", uploadController.UploadImage)

		// Delete uploaded file
		upload.DELETE("/file/:key", uploadController.DeleteFile)

		// Avatar temp upload + confirmation
		upload.POST("/avatar/temp-url", uploadController.GetAvatarTempURL)
		upload.POST("/avatar/confirm", uploadController.ConfirmAvatarUpload)
		upload.DELETE("/avatar/temp/:tempKey", uploadController.CleanupTempAvatar)
	}
}
