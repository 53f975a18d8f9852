package controllers

import (
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/types"
	"github.com/campus-ride/api-go/utils"
)

type ActivityController struct {
	DB *gorm.DB
}

func NewActivityController(db *gorm.DB) *ActivityController {
	return &ActivityController{DB: db}
}

type CreateActivityRequest struct {
	Title                string   `json:"title" binding:"required"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	Tags                 []string `json:"tags"`
	CoverImage           string   `json:"coverImage"`
	StartTime            string   `json:"startTime" binding:"required"`
	EndTime              string   `json:"endTime" binding:"required"`
	Capacity             int      `json:"capacity"`
	LocationName         string   `json:"locationName"`
	Latitude             float64  `json:"latitude"`
	Longitude            float64  `json:"longitude"`
	CheckinEnabled       bool     `json:"checkinEnabled"`
	CheckinStartOffset   *int     `json:"checkinStartOffset"`
	CheckinEndOffset     *int     `json:"checkinEndOffset"`
	CheckinCode          string   `json:"checkinCode"`
	LocationVerification bool     `json:"locationVerification"`
	VerificationRadius   *int     `json:"verificationRadius"`
	RewardPoints         *int     `json:"rewardPoints"`
}

func parseActivityTimes(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (ac *ActivityController) CreateActivity(c *gin.Context) {
	user := utils.GetUser(c)

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	start, end, err := parseActivityTimes(req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime and endTime must be RFC3339 timestamps", "success": false})
		return
	}

	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endTime must be after startTime", "success": false})
		return
	}

	activity := models.Activity{
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		Tags:                 pq.StringArray(req.Tags),
		CoverImage:           req.CoverImage,
		Status:               models.ActivityStatusDraft,
		OrganizerID:          user.UserID,
		StartTime:            start,
		EndTime:              end,
		Capacity:             req.Capacity,
		LocationName:         req.LocationName,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		CheckinEnabled:       req.CheckinEnabled,
		CheckinCode:          req.CheckinCode,
		LocationVerification: req.LocationVerification,
	}

	if req.CheckinStartOffset != nil {
		activity.CheckinStartOffset = *req.CheckinStartOffset
	} else {
		activity.CheckinStartOffset = 30
	}
	if req.CheckinEndOffset != nil {
		activity.CheckinEndOffset = *req.CheckinEndOffset
	} else {
		activity.CheckinEndOffset = 30
	}
	if req.VerificationRadius != nil {
		activity.VerificationRadius = *req.VerificationRadius
	} else {
		activity.VerificationRadius = 100
	}
	if req.RewardPoints != nil {
		activity.RewardPoints = *req.RewardPoints
	} else {
		activity.RewardPoints = 10
	}

	if err := ac.DB.Create(&activity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create activity", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "activity": activity})
}

func (ac *ActivityController) UpdateActivity(c *gin.Context) {
	var activity models.Activity
	if err := ac.DB.First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	start, end, err := parseActivityTimes(req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime and endTime must be RFC3339 timestamps", "success": false})
		return
	}

	updates := map[string]interface{}{
		"title":                 req.Title,
		"description":           req.Description,
		"category":              req.Category,
		"tags":                  pq.StringArray(req.Tags),
		"cover_image":           req.CoverImage,
		"start_time":            start,
		"end_time":              end,
		"capacity":              req.Capacity,
		"location_name":         req.LocationName,
		"latitude":              req.Latitude,
		"longitude":             req.Longitude,
		"checkin_enabled":       req.CheckinEnabled,
		"location_verification": req.LocationVerification,
	}
	if req.CheckinStartOffset != nil {
		updates["checkin_start_offset"] = *req.CheckinStartOffset
	}
	if req.CheckinEndOffset != nil {
		updates["checkin_end_offset"] = *req.CheckinEndOffset
	}
	if req.VerificationRadius != nil {
		updates["verification_radius"] = *req.VerificationRadius
	}
	if req.RewardPoints != nil {
		updates["reward_points"] = *req.RewardPoints
	}
	if req.CheckinCode != "" {
		updates["checkin_code"] = req.CheckinCode
	}

	if err := ac.DB.Model(&activity).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update activity", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "activity": activity})
}

// UpdateStatus moves an activity through its lifecycle
// (draft/published/upcoming/ongoing/completed/cancelled).
func (ac *ActivityController) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required,oneof=draft published upcoming ongoing completed cancelled"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var activity models.Activity
	if err := ac.DB.First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	if err := ac.DB.Model(&activity).Update("status", input.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": input.Status})
}

func (ac *ActivityController) DeleteActivity(c *gin.Context) {
	var activity models.Activity
	if err := ac.DB.First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	if err := ac.DB.Delete(&activity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete activity", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Activity deleted"})
}

func (ac *ActivityController) ListActivities(c *gin.Context) {
	var query struct {
		Status   string `form:"status" binding:"omitempty,oneof=draft published upcoming ongoing completed cancelled"`
		Category string `form:"category"`
		Page     int    `form:"page,default=1" binding:"min=1"`
		PageSize int    `form:"pageSize,default=10" binding:"min=1,max=50"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := ac.DB.Model(&models.Activity{})

	user := utils.GetUser(c)
	if query.Status != "" {
		// Drafts are only visible to admins
		if query.Status == models.ActivityStatusDraft && !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required", "success": false})
			return
		}
		db = db.Where("status = ?", query.Status)
	} else if !user.IsAdmin() {
		db = db.Where("status <> ?", models.ActivityStatusDraft)
	}

	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count activities"})
		return
	}

	var activities []models.Activity
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("start_time DESC").Offset(offset).Limit(query.PageSize).Find(&activities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    activities,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  count,
			TotalPages:  int(math.Ceil(float64(count) / float64(query.PageSize))),
		},
	})
}

func (ac *ActivityController) GetActivity(c *gin.Context) {
	var activity models.Activity
	if err := ac.DB.Preload("Organizer").First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	var participantCount int64
	ac.DB.Model(&models.ActivityParticipant{}).
		Where("activity_id = ? AND status = ?", activity.ID, "registered").
		Count(&participantCount)

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"activity":         activity,
		"participantCount": participantCount,
	})
}

// Register adds the caller as a participant. The unique (activity, user)
// index backs up the existence check under concurrent requests.
func (ac *ActivityController) Register(c *gin.Context) {
	user := utils.GetUser(c)

	var activity models.Activity
	if err := ac.DB.First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	switch activity.Status {
	case models.ActivityStatusPublished, models.ActivityStatusUpcoming, models.ActivityStatusOngoing:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Activity is not open for registration", "success": false})
		return
	}

	if activity.Capacity > 0 {
		var registered int64
		ac.DB.Model(&models.ActivityParticipant{}).
			Where("activity_id = ? AND status = ?", activity.ID, "registered").
			Count(&registered)
		if registered >= int64(activity.Capacity) {
			c.JSON(http.StatusConflict, gin.H{"error": "Activity is full", "success": false})
			return
		}
	}

	var existing models.ActivityParticipant
	err := ac.DB.Where("activity_id = ? AND user_id = ?", activity.ID, user.UserID).First(&existing).Error
	if err == nil {
		if existing.Status == "registered" {
			c.JSON(http.StatusConflict, gin.H{"error": "Already registered", "success": false})
			return
		}
		// Re-activate a cancelled registration, no second bonus
		if err := ac.DB.Model(&existing).Update("status", "registered").Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register", "success": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Registered successfully"})
		return
	}

	participant := models.ActivityParticipant{
		ActivityID: activity.ID,
		UserID:     user.UserID,
		Status:     "registered",
	}

	if err := ac.DB.Create(&participant).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already registered", "success": false})
		return
	}

	// First-time registration bonus rides along in the ledger
	activityID := activity.ID
	bonusErr := ac.DB.Transaction(func(tx *gorm.DB) error {
		return awardPoints(tx, user.UserID, types.REGISTRATION_BONUS_POINTS,
			models.PointSourceRegistration, "Registered for "+activity.Title, "registration", &activityID)
	})
	if bonusErr != nil {
		log.Printf("registration bonus failed for user %d activity %d: %v", user.UserID, activity.ID, bonusErr)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Registered successfully"})
}

// CancelRegistration marks the participant row cancelled. Rows are never
// hard-deleted, and a checked-in participant cannot cancel.
func (ac *ActivityController) CancelRegistration(c *gin.Context) {
	user := utils.GetUser(c)

	var participant models.ActivityParticipant
	err := ac.DB.Where("activity_id = ? AND user_id = ?", c.Param("id"), user.UserID).First(&participant).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not registered for this activity", "success": false})
		return
	}

	if participant.CheckedIn {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot cancel after checking in", "success": false})
		return
	}

	if err := ac.DB.Model(&participant).Update("status", "cancelled").Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel registration", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Registration cancelled"})
}

// GetParticipants lists registrations for an activity. Admin only.
func (ac *ActivityController) GetParticipants(c *gin.Context) {
	var activity models.Activity
	if err := ac.DB.First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	var participants []models.ActivityParticipant
	if err := ac.DB.Preload("User").
		Where("activity_id = ?", activity.ID).
		Order("created_at").
		Find(&participants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch participants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"participants": participants,
		"count":        len(participants),
	})
}

// GetMyActivities lists activities the caller registered for.
func (ac *ActivityController) GetMyActivities(c *gin.Context) {
	user := utils.GetUser(c)

	var participants []models.ActivityParticipant
	if err := ac.DB.Preload("Activity").
		Where("user_id = ?", user.UserID).
		Order("created_at DESC").
		Find(&participants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch registrations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"registrations": participants,
	})
}
