package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the system. A user can be a plain client,
// a team member/leader, or an administrator.
type User struct {
	gorm.Model

	// Authentication fields
	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	GoogleID     *string `gorm:"uniqueIndex" json:"-"`

	// Profile information
	FirstName   string  `gorm:"not null" json:"firstName"`
	LastName    string  `gorm:"not null" json:"lastName"`
	PhoneNumber *string `gorm:"uniqueIndex" json:"phoneNumber,omitempty"`

	// Roles
	IsTeamMember bool `gorm:"default:false" json:"isTeamMember"`
	IsAdmin      bool `gorm:"default:false" json:"isAdmin"`
	IsStaff      bool `gorm:"default:false" json:"isStaff"`

	// Account status
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	EmailVerified bool       `gorm:"default:false" json:"-"`
	LastLogin     *time.Time `json:"-"`
}

// AuthToken is a persisted bearer token. The key itself is a signed JWT so it
// can be validated without a lookup, but revocation goes through this table.
type AuthToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Key       string    `gorm:"size:512;uniqueIndex;not null" json:"-"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	ExpiresAt time.Time `json:"expires_at"`

	User User `json:"-"`
}

func (t *AuthToken) IsValid() bool {
	return t.ExpiresAt.After(time.Now())
}
