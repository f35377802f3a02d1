package models

import "gorm.io/gorm"

const (
	TeamStatusAvailable   = "available"
	TeamStatusUnavailable = "unavailable"
)

// Team is a group with one leader that administrators assign to orders.
// The leader is also kept in the member list.
type Team struct {
	gorm.Model
	LeaderID uint   `gorm:"not null;index" json:"leader_id"`
	Status   string `gorm:"size:11;default:'available'" json:"status"`

	// Relations
	Leader  User   `json:"-"`
	Members []User `gorm:"many2many:team_members" json:"-"`
}

// HasMember reports whether the user belongs to the team, counting the leader.
func (t *Team) HasMember(userID uint) bool {
	if t.LeaderID == userID {
		return true
	}
	for _, m := range t.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
