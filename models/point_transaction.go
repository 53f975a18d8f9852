package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PointSourceCheckin      = "activity_checkin"
	PointSourceRegistration = "activity_registration"
	PointSourceMarketplace  = "marketplace"
	PointSourceAdmin        = "admin_adjustment"
)

// PointTransaction is the append-only ledger behind every point balance.
// users.total_points is a cache derived from this table, never written on
// its own.
type PointTransaction struct {
	gorm.Model
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	Points    int       `json:"points" gorm:"not null"` // negative for deductions
	Source    string    `json:"source" gorm:"not null;type:varchar(50)"`
	Reason    string    `json:"reason" gorm:"type:varchar(255)"`
	RuleType  string    `json:"ruleType" gorm:"type:varchar(50)"`
	// Optional reference back to what earned the points.
	ActivityID *uint `json:"activityId"`
}
