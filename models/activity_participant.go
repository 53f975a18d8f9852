package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityParticipant links a user to an activity. Rows are created at
// registration and flipped once at check-in; they are never hard-deleted
// after a check-in, cancellation only marks the status.
type ActivityParticipant struct {
	gorm.Model
	ActivityID uint     `json:"activityId" gorm:"not null;uniqueIndex:idx_activity_user"`
	Activity   Activity `json:"activity,omitempty" gorm:"foreignKey:ActivityID"`
	UserID     uint     `json:"userId" gorm:"not null;uniqueIndex:idx_activity_user"`
	User       User     `json:"user" gorm:"foreignKey:UserID"`
	Status     string   `json:"status" gorm:"not null;default:'registered';type:varchar(20)"` // registered, cancelled

	CheckedIn         bool       `json:"checkedIn" gorm:"default:false"`
	CheckinTime       *time.Time `json:"checkinTime"`
	CheckinLocation   string     `json:"checkinLocation" gorm:"type:varchar(100)"` // "lat,lng"
	DistanceFromVenue *float64   `json:"distanceFromVenue"`                        // meters
	LocationVerified  bool       `json:"locationVerified" gorm:"default:false"`
}
