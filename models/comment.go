package models

import (
	"gorm.io/gorm"
)

type Comment struct {
	gorm.Model
	Content    string   `json:"content" gorm:"not null;type:text"`
	UserID     uint     `json:"userId" gorm:"not null"`
	User       User     `json:"user" gorm:"foreignKey:UserID"`
	ActivityID uint     `json:"activityId" gorm:"not null;index"`
	Activity   Activity `json:"-" gorm:"foreignKey:ActivityID"`
}
