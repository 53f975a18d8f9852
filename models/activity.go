package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	ActivityStatusDraft     = "draft"
	ActivityStatusPublished = "published"
	ActivityStatusUpcoming  = "upcoming"
	ActivityStatusOngoing   = "ongoing"
	ActivityStatusCompleted = "completed"
	ActivityStatusCancelled = "cancelled"
)

type Activity struct {
	gorm.Model
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"type:varchar(50)"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	CoverImage  string         `json:"coverImage"`
	Status      string         `json:"status" gorm:"not null;default:'draft';type:varchar(20)"`
	OrganizerID uint           `json:"organizerId" gorm:"not null"`
	Organizer   User           `json:"organizer" gorm:"foreignKey:OrganizerID"`
	StartTime   time.Time      `json:"startTime" gorm:"not null"`
	EndTime     time.Time      `json:"endTime" gorm:"not null"`
	Capacity    int            `json:"capacity" gorm:"default:0"` // 0 = unlimited

	LocationName string  `json:"locationName"`
	Latitude     float64 `json:"latitude" gorm:"type:decimal(10,8)"`
	Longitude    float64 `json:"longitude" gorm:"type:decimal(11,8)"`

	// Check-in configuration. The window is
	// [StartTime - CheckinStartOffset, EndTime + CheckinEndOffset] in minutes.
	CheckinEnabled       bool   `json:"checkinEnabled" gorm:"default:false"`
	CheckinStartOffset   int    `json:"checkinStartOffset" gorm:"default:30"`
	CheckinEndOffset     int    `json:"checkinEndOffset" gorm:"default:30"`
	CheckinCode          string `json:"-" gorm:"type:varchar(64)"` // optional QR payload
	LocationVerification bool   `json:"locationVerification" gorm:"default:false"`
	VerificationRadius   int    `json:"verificationRadius" gorm:"default:100"` // meters
	RewardPoints         int    `json:"rewardPoints" gorm:"default:10"`

	Participants []ActivityParticipant `json:"participants,omitempty" gorm:"foreignKey:ActivityID"`
	Comments     []Comment             `json:"comments,omitempty" gorm:"foreignKey:ActivityID"`
}

func (a *Activity) HasVenue() bool {
	return a.Latitude != 0 || a.Longitude != 0
}
