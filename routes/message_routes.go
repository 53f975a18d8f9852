package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-ride/api-go/controllers"
)

func SetupMessageRoutes(protected *gin.RouterGroup, messageController *controllers.MessageController) {
	messages := protected.Group("/messages")
	{
		messages.POST("", messageController.SendMessage)
		messages.GET("/conversations", messageController.ListConversations)
		messages.GET("/conversations/:id", messageController.ListMessages)
		messages.PUT("/conversations/:id/read", messageController.MarkRead)
		messages.DELETE("/:id", messageController.DeleteMessage)

		messages.GET("/system", messageController.ListSystemMessages)
		messages.PUT("/system/:id/read", messageController.MarkSystemMessageRead)
	}
}
