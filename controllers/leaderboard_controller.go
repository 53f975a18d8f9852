package controllers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/types"
	"github.com/campus-ride/api-go/utils"
)

type LeaderboardController struct {
	DB *gorm.DB
}

type LeaderboardQuery struct {
	Period   string `form:"period" binding:"omitempty,oneof=all_time weekly monthly"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=10" binding:"min=1,max=50"`
}

type LeaderboardUser struct {
	ID        uint   `json:"id" gorm:"column:id"`
	Username  string `json:"username" gorm:"column:username"`
	FirstName string `json:"first_name" gorm:"column:first_name"`
	LastName  string `json:"last_name" gorm:"column:last_name"`
	Avatar    string `json:"avatar" gorm:"column:avatar"`
	Points    int64  `json:"points" gorm:"column:points"`
	Rank      int    `json:"rank" gorm:"column:rank"`
}

func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{DB: db}
}

// buildQuery ranks users by ledger sums for windowed periods, or by the
// cached counter for all_time.
func (lc *LeaderboardController) buildQuery(period string, now time.Time) *gorm.DB {
	baseQuery := lc.DB.Model(&models.User{}).
		Where("users.account_status = ?", "active")

	selectClause := "users.id, users.username, users.first_name, users.last_name, users.avatar"

	switch period {
	case "weekly", "monthly":
		periodStart := types.PeriodStart(period, now)
		baseQuery = baseQuery.
			Joins("LEFT JOIN point_transactions ON users.id = point_transactions.user_id AND point_transactions.created_at >= ?", periodStart)
		selectClause += ", COALESCE(SUM(point_transactions.points), 0) as points" +
			", RANK() OVER (ORDER BY COALESCE(SUM(point_transactions.points), 0) DESC) as rank"
		baseQuery = baseQuery.Select(selectClause).
			Group("users.id, users.username, users.first_name, users.last_name, users.avatar")

	default: // all_time
		selectClause += ", users.total_points as points" +
			", RANK() OVER (ORDER BY users.total_points DESC) as rank"
		baseQuery = baseQuery.Select(selectClause)
	}

	return baseQuery
}

func (lc *LeaderboardController) GetLeaderboard(c *gin.Context) {
	var query LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if query.Period == "" {
		query.Period = "all_time"
	}

	user := utils.GetUser(c)
	userID := user.UserID

	now := time.Now()
	baseQuery := lc.buildQuery(query.Period, now)

	// Get total count for pagination
	var count int64
	countQuery := baseQuery.Session(&gorm.Session{})
	if err := countQuery.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting users: " + err.Error()})
		return
	}

	offset := (query.Page - 1) * query.PageSize

	var leaderboardUsers []LeaderboardUser
	if err := baseQuery.Order("rank").Offset(offset).Limit(query.PageSize).Scan(&leaderboardUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching leaderboard: " + err.Error()})
		return
	}

	// Find the current user's rank for the same period by counting users
	// ahead of them.
	userRank, err := lc.userRank(query.Period, userID, now)
	if err != nil {
		var basicUserInfo struct {
			Username string `json:"username"`
		}
		lc.DB.Model(&models.User{}).Select("username").Where("id = ?", userID).First(&basicUserInfo)

		userRank = LeaderboardUser{
			ID:       userID,
			Rank:     0,
			Username: basicUserInfo.Username,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": leaderboardUsers,
		"user_rank":   userRank,
		"pagination": gin.H{
			"current_page": query.Page,
			"page_size":    query.PageSize,
			"total_items":  count,
			"total_pages":  math.Ceil(float64(count) / float64(query.PageSize)),
		},
		"filter": gin.H{
			"period": query.Period,
		},
	})
}

func (lc *LeaderboardController) userRank(period string, userID uint, now time.Time) (LeaderboardUser, error) {
	var rank LeaderboardUser

	var user models.User
	if err := lc.DB.First(&user, userID).Error; err != nil {
		return rank, err
	}

	rank.ID = user.ID
	rank.Username = user.Username
	rank.FirstName = user.FirstName
	rank.LastName = user.LastName
	rank.Avatar = user.Avatar

	switch period {
	case "weekly", "monthly":
		periodStart := types.PeriodStart(period, now)

		var points struct {
			Points int64
		}
		if err := lc.DB.Model(&models.PointTransaction{}).
			Select("COALESCE(SUM(points), 0) as points").
			Where("user_id = ? AND created_at >= ?", userID, periodStart).
			Scan(&points).Error; err != nil {
			return rank, err
		}
		rank.Points = points.Points

		var ahead int64
		err := lc.DB.Raw(`
			SELECT COUNT(*) FROM (
				SELECT user_id, SUM(points) AS total
				FROM point_transactions
				WHERE created_at >= ?
				GROUP BY user_id
				HAVING SUM(points) > ?
			) better`, periodStart, points.Points).Scan(&ahead).Error
		if err != nil {
			return rank, err
		}
		rank.Rank = int(ahead) + 1

	default: // all_time
		rank.Points = user.TotalPoints

		var ahead int64
		if err := lc.DB.Model(&models.User{}).
			Where("account_status = ? AND total_points > ?", "active", user.TotalPoints).
			Count(&ahead).Error; err != nil {
			return rank, err
		}
		rank.Rank = int(ahead) + 1
	}

	return rank, nil
}

// TopWeekly returns the top n users of the current week, used by the coupon
// distribution.
func (lc *LeaderboardController) TopWeekly(n int, now time.Time) ([]LeaderboardUser, error) {
	var users []LeaderboardUser
	err := lc.buildQuery("weekly", now).Order("rank").Limit(n).Scan(&users).Error
	return users, err
}
