package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-ride/api-go/controllers"
)

func SetupActivityRoutes(protected *gin.RouterGroup, activityController *controllers.ActivityController, checkinController *controllers.CheckinController, commentController *controllers.CommentController) {
	activities := protected.Group("/activities")
	{
		activities.GET("", activityController.ListActivities)
		activities.GET("/mine", activityController.GetMyActivities)
		activities.GET("/:id", activityController.GetActivity)
		activities.POST("/:id/register", activityController.Register)
		activities.DELETE("/:id/register", activityController.CancelRegistration)

		activities.GET("/:id/checkin/eligibility", checkinController.GetEligibility)
		activities.POST("/:id/checkin", checkinController.Checkin)

		activities.GET("/:id/comments", commentController.ListComments)
		activities.POST("/:id/comments", commentController.CreateComment)
		activities.DELETE("/:id/comments/:commentId", commentController.DeleteComment)
	}
}
