package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityCheckin is the immutable audit record of a successful check-in.
// Rows are only ever inserted, exactly one per (activity, user).
type ActivityCheckin struct {
	gorm.Model
	CreatedAt         time.Time `json:"createdAt"`
	ActivityID        uint      `json:"activityId" gorm:"not null;uniqueIndex:idx_checkin_activity_user"`
	Activity          Activity  `json:"-" gorm:"foreignKey:ActivityID"`
	UserID            uint      `json:"userId" gorm:"not null;uniqueIndex:idx_checkin_activity_user"`
	User              User      `json:"-" gorm:"foreignKey:UserID"`
	Latitude          *float64  `json:"latitude" gorm:"type:decimal(10,8)"`
	Longitude         *float64  `json:"longitude" gorm:"type:decimal(11,8)"`
	DistanceFromVenue *float64  `json:"distanceFromVenue"` // meters
	LocationVerified  bool      `json:"locationVerified"`
	DeviceID          string    `json:"deviceId" gorm:"type:varchar(100)"`
	DeviceInfo        string    `json:"deviceInfo" gorm:"type:varchar(255)"`
	PointsAwarded     int       `json:"pointsAwarded"`
}
