package controllers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/utils"
)

type CarpoolController struct {
	DB *gorm.DB
}

func NewCarpoolController(db *gorm.DB) *CarpoolController {
	return &CarpoolController{DB: db}
}

type CreateRideRequest struct {
	Origin         string  `json:"origin" binding:"required"`
	Destination    string  `json:"destination" binding:"required"`
	OriginLat      float64 `json:"originLat"`
	OriginLng      float64 `json:"originLng"`
	DestinationLat float64 `json:"destinationLat"`
	DestinationLng float64 `json:"destinationLng"`
	DepartureTime  string  `json:"departureTime" binding:"required"`
	SeatsTotal     int     `json:"seatsTotal" binding:"required,min=1,max=8"`
	PricePerSeat   float64 `json:"pricePerSeat" binding:"min=0"`
	Notes          string  `json:"notes"`
}

func (cc *CarpoolController) CreateRide(c *gin.Context) {
	user := utils.GetUser(c)

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "departureTime must be an RFC3339 timestamp", "success": false})
		return
	}

	if departure.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "departureTime must be in the future", "success": false})
		return
	}

	ride := models.Ride{
		DriverID:       user.UserID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		OriginLat:      req.OriginLat,
		OriginLng:      req.OriginLng,
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
		DepartureTime:  departure,
		SeatsTotal:     req.SeatsTotal,
		SeatsAvailable: req.SeatsTotal,
		PricePerSeat:   req.PricePerSeat,
		Notes:          req.Notes,
		Status:         models.RideStatusOpen,
	}

	if err := cc.DB.Create(&ride).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ride", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "ride": ride})
}

func (cc *CarpoolController) ListRides(c *gin.Context) {
	var query struct {
		Origin      string `form:"origin"`
		Destination string `form:"destination"`
		Date        string `form:"date"` // YYYY-MM-DD
		Page        int    `form:"page,default=1" binding:"min=1"`
		PageSize    int    `form:"pageSize,default=10" binding:"min=1,max=50"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := cc.DB.Model(&models.Ride{}).
		Where("status = ? AND departure_time > ?", models.RideStatusOpen, time.Now())

	if query.Origin != "" {
		db = db.Where("origin ILIKE ?", "%"+query.Origin+"%")
	}
	if query.Destination != "" {
		db = db.Where("destination ILIKE ?", "%"+query.Destination+"%")
	}
	if query.Date != "" {
		day, err := time.Parse("2006-01-02", query.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		db = db.Where("departure_time >= ? AND departure_time < ?", day, day.AddDate(0, 0, 1))
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count rides"})
		return
	}

	var rides []models.Ride
	offset := (query.Page - 1) * query.PageSize
	if err := db.Preload("Driver").Order("departure_time").Offset(offset).Limit(query.PageSize).Find(&rides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rides"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    rides,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  count,
			TotalPages:  int(math.Ceil(float64(count) / float64(query.PageSize))),
		},
	})
}

func (cc *CarpoolController) GetRide(c *gin.Context) {
	var ride models.Ride
	if err := cc.DB.Preload("Driver").Preload("Bookings.Passenger").First(&ride, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "ride": ride})
}

// BookRide reserves seats through a conditional decrement so the ride can
// never oversell under concurrent bookings.
func (cc *CarpoolController) BookRide(c *gin.Context) {
	user := utils.GetUser(c)

	var input struct {
		Seats int `json:"seats" binding:"omitempty,min=1,max=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}
	if input.Seats == 0 {
		input.Seats = 1
	}

	var ride models.Ride
	if err := cc.DB.First(&ride, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found", "success": false})
		return
	}

	if ride.DriverID == user.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot book your own ride", "success": false})
		return
	}

	if ride.Status != models.RideStatusOpen {
		c.JSON(http.StatusConflict, gin.H{"error": "Ride is not open for booking", "success": false})
		return
	}

	var existing models.RideBooking
	hasExisting := cc.DB.Where("ride_id = ? AND passenger_id = ?", ride.ID, user.UserID).First(&existing).Error == nil
	if hasExisting && existing.Status == models.BookingStatusConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "Already booked", "success": false})
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Ride{}).
			Where("id = ? AND status = ? AND seats_available >= ?", ride.ID, models.RideStatusOpen, input.Seats).
			Updates(map[string]interface{}{
				"seats_available": gorm.Expr("seats_available - ?", input.Seats),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		// Mark full when the last seat went
		tx.Model(&models.Ride{}).
			Where("id = ? AND seats_available = 0", ride.ID).
			Update("status", models.RideStatusFull)

		if hasExisting {
			return tx.Model(&existing).Updates(map[string]interface{}{
				"status": models.BookingStatusConfirmed,
				"seats":  input.Seats,
			}).Error
		}

		booking := models.RideBooking{
			RideID:      ride.ID,
			PassengerID: user.UserID,
			Seats:       input.Seats,
			Status:      models.BookingStatusConfirmed,
		}
		return tx.Create(&booking).Error
	})

	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough seats available", "success": false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book ride", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Ride booked"})
}

// CancelBooking releases the passenger's seats back to the ride.
func (cc *CarpoolController) CancelBooking(c *gin.Context) {
	user := utils.GetUser(c)

	var booking models.RideBooking
	err := cc.DB.Where("ride_id = ? AND passenger_id = ?", c.Param("id"), user.UserID).First(&booking).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found", "success": false})
		return
	}

	if booking.Status != models.BookingStatusConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking already cancelled", "success": false})
		return
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		// Conditional flip so concurrent cancels release the seats only once.
		result := tx.Model(&models.RideBooking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingStatusConfirmed).
			Update("status", models.BookingStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrDuplicatedKey
		}

		if err := tx.Model(&models.Ride{}).
			Where("id = ?", booking.RideID).
			Updates(map[string]interface{}{
				"seats_available": gorm.Expr("seats_available + ?", booking.Seats),
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Ride{}).
			Where("id = ? AND status = ?", booking.RideID, models.RideStatusFull).
			Update("status", models.RideStatusOpen).Error
	})

	if err == gorm.ErrDuplicatedKey {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking already cancelled", "success": false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking cancelled"})
}

// CloseRide lets the driver close or cancel their ride.
func (cc *CarpoolController) CloseRide(c *gin.Context) {
	user := utils.GetUser(c)

	var input struct {
		Status string `json:"status" binding:"required,oneof=closed cancelled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var ride models.Ride
	if err := cc.DB.First(&ride, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found", "success": false})
		return
	}

	if ride.DriverID != user.UserID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	if err := cc.DB.Model(&ride).Update("status", input.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ride", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": input.Status})
}

func (cc *CarpoolController) GetMyRides(c *gin.Context) {
	user := utils.GetUser(c)

	var rides []models.Ride
	if err := cc.DB.Where("driver_id = ?", user.UserID).Order("departure_time DESC").Find(&rides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rides"})
		return
	}

	var bookings []models.RideBooking
	if err := cc.DB.Preload("Ride.Driver").Where("passenger_id = ?", user.UserID).Order("created_at DESC").Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"driving":  rides,
		"bookings": bookings,
	})
}
