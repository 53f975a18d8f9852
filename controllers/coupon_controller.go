package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/types"
	"github.com/campus-ride/api-go/utils"
)

type CouponController struct {
	DB          *gorm.DB
	Leaderboard *LeaderboardController
}

func NewCouponController(db *gorm.DB, leaderboard *LeaderboardController) *CouponController {
	return &CouponController{DB: db, Leaderboard: leaderboard}
}

func generateCouponCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// DistributeWeeklyCoupons issues coupons to the current week's top earners.
// Rank tier selects the merchant pool. Safe to re-run: the
// (user, coupon, week) unique index turns duplicates into skips. Admin only.
func (cc *CouponController) DistributeWeeklyCoupons(c *gin.Context) {
	now := time.Now()
	weekStart := types.PeriodStart("weekly", now)

	topUsers, err := cc.Leaderboard.TopWeekly(types.WEEKLY_COUPON_WINNERS, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute weekly leaderboard", "success": false})
		return
	}

	issued := 0
	skipped := 0
	failed := 0

	for _, entry := range topUsers {
		if entry.Points <= 0 {
			continue
		}

		tier := types.MerchantTierForRank(entry.Rank)
		if tier == "" {
			continue
		}

		var coupons []models.Coupon
		if err := cc.DB.
			Joins("JOIN merchants ON merchants.id = coupons.merchant_id").
			Where("coupons.is_active = ? AND merchants.is_active = ? AND merchants.tier = ?", true, true, tier).
			Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons", "success": false})
			return
		}

		for _, coupon := range coupons {
			userCoupon := models.UserCoupon{
				UserID:    entry.ID,
				CouponID:  coupon.ID,
				WeekStart: weekStart,
				Code:      generateCouponCode(),
				Status:    models.CouponStatusActive,
				ExpiresAt: now.AddDate(0, 0, coupon.ValidDays),
			}

			if err := cc.DB.Create(&userCoupon).Error; err != nil {
				if isUniqueViolation(err) {
					// Already issued for this week
					skipped++
					continue
				}
				log.Printf("Coupon distribution: issue failed user=%d coupon=%d: %v", entry.ID, coupon.ID, err)
				failed++
				continue
			}
			issued++
		}
	}

	log.Printf("Weekly coupon distribution: issued=%d skipped=%d failed=%d weekStart=%s", issued, skipped, failed, weekStart.Format("2006-01-02"))

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"issued":    issued,
		"skipped":   skipped,
		"failed":    failed,
		"weekStart": weekStart,
	})
}

func (cc *CouponController) GetMyCoupons(c *gin.Context) {
	user := utils.GetUser(c)

	// Flip expired actives before listing
	cc.DB.Model(&models.UserCoupon{}).
		Where("user_id = ? AND status = ? AND expires_at < ?", user.UserID, models.CouponStatusActive, time.Now()).
		Update("status", models.CouponStatusExpired)

	var coupons []models.UserCoupon
	if err := cc.DB.Preload("Coupon.Merchant").
		Where("user_id = ?", user.UserID).
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "coupons": coupons})
}

// RedeemCoupon marks a coupon used. Conditional update keeps a coupon from
// being redeemed twice.
func (cc *CouponController) RedeemCoupon(c *gin.Context) {
	user := utils.GetUser(c)

	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	now := time.Now()
	result := cc.DB.Model(&models.UserCoupon{}).
		Where("user_id = ? AND code = ? AND status = ? AND expires_at >= ?",
			user.UserID, input.Code, models.CouponStatusActive, now).
		Updates(map[string]interface{}{
			"status":      models.CouponStatusRedeemed,
			"redeemed_at": now,
		})

	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem coupon", "success": false})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Coupon not found, expired, or already redeemed", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Coupon redeemed"})
}

// CreateMerchant registers a coupon merchant. Admin only.
func (cc *CouponController) CreateMerchant(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
		Tier string `json:"tier" binding:"required,oneof=premium standard"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	merchant := models.Merchant{Name: input.Name, Tier: input.Tier, IsActive: true}
	if err := cc.DB.Create(&merchant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create merchant", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "merchant": merchant})
}

// CreateCoupon defines a coupon template for a merchant. Admin only.
func (cc *CouponController) CreateCoupon(c *gin.Context) {
	var input struct {
		MerchantID  uint    `json:"merchantId" binding:"required"`
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		Discount    float64 `json:"discount" binding:"min=0"`
		ValidDays   int     `json:"validDays" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var merchant models.Merchant
	if err := cc.DB.First(&merchant, input.MerchantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Merchant not found", "success": false})
		return
	}

	coupon := models.Coupon{
		MerchantID:  merchant.ID,
		Title:       input.Title,
		Description: input.Description,
		Discount:    input.Discount,
		ValidDays:   input.ValidDays,
		IsActive:    true,
	}
	if coupon.ValidDays == 0 {
		coupon.ValidDays = 7
	}

	if err := cc.DB.Create(&coupon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "coupon": coupon})
}
