package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

type User struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	Username      string         `gorm:"unique;not null" json:"username"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Email         string         `gorm:"unique;not null" json:"email"`
	Phone         *string        `gorm:"unique" json:"phone"`
	Password      *string        `json:"-"` // Don't expose password in JSON
	StudentID     string         `json:"student_id"`
	Bio           string         `json:"bio"`
	Avatar        string         `json:"avatar"`
	Role          string         `gorm:"not null;default:'user';type:varchar(20)" json:"role"`
	GoogleID      *string        `gorm:"uniqueIndex" json:"-"`
	Provider      string         `gorm:"default:'email';type:varchar(20)" json:"provider"`
	AccountStatus string         `gorm:"default:'active'" json:"account_status"`
	IsVerified    bool           `json:"is_verified"`
	EmailVerified bool           `json:"email_verified"`
	// Cached balance; only ever moved together with a PointTransaction row.
	TotalPoints   int64          `gorm:"default:0" json:"total_points"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}
