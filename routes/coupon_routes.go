package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-ride/api-go/controllers"
)

func SetupCouponRoutes(protected *gin.RouterGroup, couponController *controllers.CouponController) {
	coupons := protected.Group("/coupons")
	{
		coupons.GET("/mine", couponController.GetMyCoupons)
		coupons.POST("/redeem", couponController.RedeemCoupon)
	}
}
