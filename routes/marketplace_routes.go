package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-ride/api-go/controllers"
)

func SetupMarketplaceRoutes(protected *gin.RouterGroup, marketplaceController *controllers.MarketplaceController) {
	products := protected.Group("/products")
	{
		products.POST("", marketplaceController.CreateProduct)
		products.GET("", marketplaceController.ListProducts)
		products.GET("/mine", marketplaceController.GetMyProducts)
		products.GET("/:id", marketplaceController.GetProduct)
		products.PUT("/:id", marketplaceController.UpdateProduct)
		products.DELETE("/:id", marketplaceController.DeleteProduct)
	}
}
