package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat groups participants for direct or group messaging.
type Chat struct {
	gorm.Model
	Name    string `gorm:"size:255;not null" json:"name"`
	IsGroup bool   `gorm:"default:false" json:"is_group"`

	Participants []Participant `gorm:"foreignKey:ChatID" json:"participants,omitempty"`
}

type Participant struct {
	gorm.Model
	ChatID   uint      `gorm:"not null;index" json:"chat_id"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Chat Chat `json:"-"`
	User User `json:"-"`
}

type Message struct {
	gorm.Model
	ChatID   uint   `gorm:"not null;index" json:"chat_id"`
	SenderID uint   `gorm:"not null;index" json:"sender_id"`
	Content  string `gorm:"not null" json:"content"`

	Chat   Chat `json:"-"`
	Sender User `json:"-"`
}

// Comment is a task-level discussion entry broadcast over the comments room.
type Comment struct {
	gorm.Model
	TaskID   uint   `gorm:"not null;index" json:"task_id"`
	MemberID uint   `gorm:"not null;index" json:"member_id"`
	Content  string `gorm:"not null" json:"content"`

	Task   Task `json:"-"`
	Member User `json:"-"`
}

// Notification is a per-user event broadcast over the notifications room.
type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Content string `gorm:"not null" json:"content"`

	User User `json:"-"`
}
