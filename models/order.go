package models

import "time"

const (
	OrderStatusActive = "active"
	OrderStatusClosed = "closed"
)

// Order is a client-submitted project request. It stays unaccepted until an
// administrator attaches a team; tasks hang off the order afterwards.
//
// UpdatedAt and AcceptedAt are managed by hand: UpdatedAt stays null until the
// owner edits the order, AcceptedAt is written exactly once at acceptance.
type Order struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	OwnerID     uint       `gorm:"not null;index" json:"owner"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	Description string     `gorm:"not null" json:"description"`
	Accepted    bool       `gorm:"default:false" json:"accepted"`
	TeamID      *uint      `gorm:"index" json:"team"`
	Deadline    time.Time  `gorm:"type:date" json:"deadline"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
	AcceptedAt  *time.Time `json:"acceptedAt"`
	Status      string     `gorm:"size:20;default:'active'" json:"status"`

	// Relations
	Owner User   `json:"-"`
	Team  *Team  `json:"-"`
	Tasks []Task `gorm:"foreignKey:OrderID" json:"-"`
}
