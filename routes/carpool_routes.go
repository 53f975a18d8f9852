package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-ride/api-go/controllers"
)

func SetupCarpoolRoutes(protected *gin.RouterGroup, carpoolController *controllers.CarpoolController) {
	rides := protected.Group("/rides")
	{
		rides.POST("", carpoolController.CreateRide)
		rides.GET("", carpoolController.ListRides)
		rides.GET("/mine", carpoolController.GetMyRides)
		rides.GET("/:id", carpoolController.GetRide)
		rides.POST("/:id/book", carpoolController.BookRide)
		rides.DELETE("/:id/book", carpoolController.CancelBooking)
		rides.PUT("/:id/status", carpoolController.CloseRide)
	}
}
