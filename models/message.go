package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a two-party thread. UserAID is always the smaller of the
// two ids so a pair maps to exactly one row.
type Conversation struct {
	gorm.Model
	UserAID       uint       `json:"userAId" gorm:"not null;uniqueIndex:idx_conversation_pair"`
	UserA         User       `json:"userA" gorm:"foreignKey:UserAID"`
	UserBID       uint       `json:"userBId" gorm:"not null;uniqueIndex:idx_conversation_pair"`
	UserB         User       `json:"userB" gorm:"foreignKey:UserBID"`
	LastMessageAt *time.Time `json:"lastMessageAt" gorm:"index"`
}

type Message struct {
	gorm.Model
	CreatedAt      time.Time    `json:"createdAt" gorm:"index"`
	ConversationID uint         `json:"conversationId" gorm:"not null;index"`
	Conversation   Conversation `json:"-" gorm:"foreignKey:ConversationID"`
	SenderID       uint         `json:"senderId" gorm:"not null"`
	Sender         User         `json:"sender" gorm:"foreignKey:SenderID"`
	Content        string       `json:"content" gorm:"not null;type:text"`
	IsRead         bool         `json:"isRead" gorm:"default:false"`
}

// SystemMessage is an announcement row. UserID nil means broadcast.
type SystemMessage struct {
	gorm.Model
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UserID    *uint     `json:"userId" gorm:"index"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	Category  string    `json:"category" gorm:"type:varchar(50)"` // "announcement", "activity", "points"
}

// SystemMessageRead tracks per-user read state for broadcast messages.
type SystemMessageRead struct {
	gorm.Model
	SystemMessageID uint          `json:"systemMessageId" gorm:"not null;uniqueIndex:idx_sysmsg_user"`
	SystemMessage   SystemMessage `json:"-" gorm:"foreignKey:SystemMessageID"`
	UserID          uint          `json:"userId" gorm:"not null;uniqueIndex:idx_sysmsg_user"`
}
