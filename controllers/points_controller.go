package controllers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/utils"
)

type PointsController struct {
	DB *gorm.DB
}

func NewPointsController(db *gorm.DB) *PointsController {
	return &PointsController{DB: db}
}

// awardPoints appends a ledger row and moves the cached balance in one shot.
// The counter only ever changes through this relative update so it cannot
// drift from the ledger under partial failures. Call inside a transaction.
func awardPoints(tx *gorm.DB, userID uint, points int, source, reason, ruleType string, activityID *uint) error {
	transaction := models.PointTransaction{
		UserID:     userID,
		Points:     points,
		Source:     source,
		Reason:     reason,
		RuleType:   ruleType,
		ActivityID: activityID,
	}

	if err := tx.Create(&transaction).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", points)).Error
}

func (pc *PointsController) GetBalance(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	// The ledger is authoritative; the user row carries the cached value.
	var total struct {
		Points int64
	}
	if err := pc.DB.Model(&models.PointTransaction{}).
		Select("COALESCE(SUM(points), 0) as points").
		Where("user_id = ?", user.UserID).
		Scan(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": total.Points,
	})
}

func (pc *PointsController) GetTransactions(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var query struct {
		Page     int    `form:"page,default=1" binding:"min=1"`
		PageSize int    `form:"pageSize,default=20" binding:"min=1,max=100"`
		Source   string `form:"source"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := pc.DB.Model(&models.PointTransaction{}).Where("user_id = ?", user.UserID)
	if query.Source != "" {
		db = db.Where("source = ?", query.Source)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
		return
	}

	var transactions []models.PointTransaction
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    transactions,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  count,
			TotalPages:  int(math.Ceil(float64(count) / float64(query.PageSize))),
		},
	})
}

// AdjustPoints lets an admin credit or debit a user through the ledger.
func (pc *PointsController) AdjustPoints(c *gin.Context) {
	var input struct {
		UserID uint   `json:"userId" binding:"required"`
		Points int    `json:"points" binding:"required"`
		Reason string `json:"reason" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var target models.User
	if err := pc.DB.First(&target, input.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "success": false})
		return
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		return awardPoints(tx, input.UserID, input.Points, models.PointSourceAdmin, input.Reason, "manual", nil)
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust points", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Points adjusted"})
}
