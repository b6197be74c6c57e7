package models

import "time"

// Report is a user's complaint about a post. A reporter can hold at most one
// report per post; repeat submissions are absorbed by the unique index.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;uniqueIndex:idx_reports_post_reporter" json:"post_id"`
	ReporterID uint      `gorm:"not null;uniqueIndex:idx_reports_post_reporter" json:"reporter_id"`
	Reason     string    `gorm:"not null" json:"reason"`
	CreatedAt  time.Time `json:"created_at"`

	Post     Post `gorm:"foreignKey:PostID" json:"-"`
	Reporter User `gorm:"foreignKey:ReporterID" json:"-"`
}
