package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/controllers"
	"github.com/campus-ride/api-go/middleware"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize controllers
	uploadController := controllers.NewUploadController(db)
	authController := controllers.NewAuthController(db, uploadController)
	activityController := controllers.NewActivityController(db)
	checkinController := controllers.NewCheckinController(db)
	leaderboardController := controllers.NewLeaderboardController(db)
	pointsController := controllers.NewPointsController(db)
	marketplaceController := controllers.NewMarketplaceController(db)
	carpoolController := controllers.NewCarpoolController(db)
	messageController := controllers.NewMessageController(db)
	commentController := controllers.NewCommentController(db)
	couponController := controllers.NewCouponController(db, leaderboardController)

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)
		public.POST("/auth/register/email-check", authController.RegisterEmailCheck)
		public.POST("/auth/register/username-check", authController.RegisterUsernameCheck)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/logout", authController.Logout)
		protected.POST("/auth/refresh-token", authController.RefreshToken)
		protected.GET("/profile", authController.GetProfile)
		protected.PUT("/profile", authController.UpdateProfile)

		protected.GET("/leaderboard", leaderboardController.GetLeaderboard)
		protected.GET("/points/balance", pointsController.GetBalance)
		protected.GET("/points/transactions", pointsController.GetTransactions)

		SetupActivityRoutes(protected, activityController, checkinController, commentController)
		SetupMarketplaceRoutes(protected, marketplaceController)
		SetupCarpoolRoutes(protected, carpoolController)
		SetupMessageRoutes(protected, messageController)
		SetupCouponRoutes(protected, couponController)
		SetupUploadRoutes(protected, uploadController)
	}

	// Admin routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/activities", activityController.CreateActivity)
		admin.PUT("/activities/:id", activityController.UpdateActivity)
		admin.PUT("/activities/:id/status", activityController.UpdateStatus)
		admin.DELETE("/activities/:id", activityController.DeleteActivity)
		admin.GET("/activities/:id/participants", activityController.GetParticipants)
		admin.GET("/activities/:id/checkins", checkinController.GetCheckinRecords)

		admin.POST("/points/adjust", pointsController.AdjustPoints)

		admin.POST("/messages/system", messageController.CreateSystemMessage)
		admin.DELETE("/messages/system/:id", messageController.DeleteSystemMessage)

		admin.POST("/merchants", couponController.CreateMerchant)
		admin.POST("/coupons", couponController.CreateCoupon)
		admin.POST("/coupons/distribute", couponController.DistributeWeeklyCoupons)
	}
}
