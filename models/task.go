package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskStatusPending = "pending"
	TaskStatusActive  = "active"
	TaskStatusClosed  = "closed"
)

// Task is a unit of work inside an order, assigned to one member of the
// order's team. The executor reference survives user deletion (set null).
type Task struct {
	gorm.Model
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	ExecutorID  *uint      `gorm:"index" json:"executor"`
	TeamID      uint       `gorm:"not null;index" json:"team"`
	OrderID     *uint      `gorm:"index" json:"order"`
	Status      string     `gorm:"size:11;default:'pending'" json:"status"`
	Deadline    *time.Time `gorm:"type:date" json:"deadline"`

	// Relations
	Executor *User  `json:"-"`
	Team     Team   `json:"-"`
	Order    *Order `json:"-"`
}
