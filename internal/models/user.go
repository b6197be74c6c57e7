// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered campus user. Batch, Campus and Branch are the
// profile attributes audience descriptors are matched against; all three are
// nullable because older accounts predate profile collection.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	AvatarURL string         `json:"avatar_url"`
	Batch     *string        `json:"batch"`
	Campus    *string        `json:"campus"`
	Branch    *string        `json:"branch"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// Profile extracts the audience-matching attributes.
func (u *User) Profile() Profile {
	if u == nil {
		return Profile{}
	}
	return Profile{Batch: u.Batch, Campus: u.Campus, Branch: u.Branch}
}
