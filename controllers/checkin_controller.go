package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/types"
	"github.com/campus-ride/api-go/utils"
)

type CheckinController struct {
	DB *gorm.DB
}

type CheckinRequest struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CheckinCode string   `json:"checkinCode"`
	DeviceID    string   `json:"deviceId"`
	DeviceInfo  string   `json:"deviceInfo"`
}

func NewCheckinController(db *gorm.DB) *CheckinController {
	return &CheckinController{DB: db}
}

func (cc *CheckinController) loadActivityAndParticipant(c *gin.Context) (*models.Activity, *models.ActivityParticipant, bool) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return nil, nil, false
	}

	activityID := c.Param("id")

	var activity models.Activity
	if err := cc.DB.First(&activity, activityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return nil, nil, false
	}

	var participant models.ActivityParticipant
	err := cc.DB.Where("activity_id = ? AND user_id = ?", activity.ID, user.UserID).First(&participant).Error
	if err != nil {
		return &activity, nil, true
	}

	return &activity, &participant, true
}

// GetEligibility reports whether the caller may check in right now, with a
// human-readable reason when not.
func (cc *CheckinController) GetEligibility(c *gin.Context) {
	activity, participant, ok := cc.loadActivityAndParticipant(c)
	if !ok {
		return
	}

	result := types.EvaluateEligibility(activity, participant, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"eligibility": result,
	})
}

// Checkin executes a check-in. Eligibility is re-evaluated here and the
// participant flip is a conditional update so two concurrent attempts cannot
// both succeed.
func (cc *CheckinController) Checkin(c *gin.Context) {
	user := utils.GetUser(c)

	activity, participant, ok := cc.loadActivityAndParticipant(c)
	if !ok {
		return
	}

	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	now := time.Now()
	eligibility := types.EvaluateEligibility(activity, participant, now)
	if !eligibility.Eligible {
		status := http.StatusForbidden
		if eligibility.Code == types.EligibilityCodeAlreadyDone {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"success":     false,
			"error":       eligibility.Reason,
			"code":        eligibility.Code,
			"eligibility": eligibility,
		})
		return
	}

	// QR code verification when the activity carries one
	if activity.CheckinCode != "" && req.CheckinCode != activity.CheckinCode {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid check-in code", "success": false, "code": "invalid_code"})
		return
	}

	// GPS verification
	var distance *float64
	locationVerified := false
	if activity.LocationVerification && activity.HasVenue() {
		if req.Latitude == nil || req.Longitude == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Location is required for this activity",
				"code":    "location_required",
			})
			return
		}

		d := types.CalculateDistanceMeters(*req.Latitude, *req.Longitude, activity.Latitude, activity.Longitude)
		distance = &d

		if d > float64(activity.VerificationRadius) {
			c.JSON(http.StatusForbidden, gin.H{
				"success":        false,
				"error":          fmt.Sprintf("You are %.0fm from the venue, must be within %dm", d, activity.VerificationRadius),
				"code":           "out_of_range",
				"distance":       d,
				"requiredRadius": activity.VerificationRadius,
			})
			return
		}
		locationVerified = true
	}

	var checkinLocation string
	if req.Latitude != nil && req.Longitude != nil {
		checkinLocation = fmt.Sprintf("%f,%f", *req.Latitude, *req.Longitude)
	}

	rewardPoints := types.RewardPointsFor(activity)

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		// Conditional update closes the race between the eligibility check
		// above and this write: only one request flips the flag.
		result := tx.Model(&models.ActivityParticipant{}).
			Where("id = ? AND checked_in = ?", participant.ID, false).
			Updates(map[string]interface{}{
				"checked_in":          true,
				"checkin_time":        now,
				"checkin_location":    checkinLocation,
				"distance_from_venue": distance,
				"location_verified":   locationVerified,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrDuplicatedKey
		}

		checkin := models.ActivityCheckin{
			ActivityID:        activity.ID,
			UserID:            user.UserID,
			Latitude:          req.Latitude,
			Longitude:         req.Longitude,
			DistanceFromVenue: distance,
			LocationVerified:  locationVerified,
			DeviceID:          req.DeviceID,
			DeviceInfo:        req.DeviceInfo,
			PointsAwarded:     rewardPoints,
		}
		if err := tx.Create(&checkin).Error; err != nil {
			return err
		}

		activityID := activity.ID
		reason := fmt.Sprintf("Checked in to %s", activity.Title)
		return awardPoints(tx, user.UserID, rewardPoints, models.PointSourceCheckin, reason, "checkin", &activityID)
	})

	if err == gorm.ErrDuplicatedKey {
		c.JSON(http.StatusConflict, gin.H{"error": "You have already checked in", "success": false, "code": types.EligibilityCodeAlreadyDone})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Checked in successfully",
		"checkinTime":      now,
		"pointsAwarded":    rewardPoints,
		"locationVerified": locationVerified,
		"distance":         distance,
	})
}

// GetCheckinRecords lists the audit rows for an activity. Admin only.
func (cc *CheckinController) GetCheckinRecords(c *gin.Context) {
	activityID := c.Param("id")

	var activity models.Activity
	if err := cc.DB.First(&activity, activityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	var checkins []models.ActivityCheckin
	if err := cc.DB.Where("activity_id = ?", activity.ID).Order("created_at").Find(&checkins).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch check-ins"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"checkins": checkins,
		"count":    len(checkins),
	})
}
