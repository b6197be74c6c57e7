package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Post categories. Stored lowercase; the client renders display labels.
const (
	CategoryGeneral     = "general"
	CategoryCareer      = "career"
	CategoryOpportunity = "opportunity"
	CategoryEvent       = "event"
)

// MaxPostImages bounds the images attached to a single post.
const MaxPostImages = 5

// ImageList is an ordered set of image URLs stored as a jsonb array.
type ImageList []string

// Scan implements sql.Scanner.
func (l *ImageList) Scan(value any) error {
	switch src := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(src, l)
	case string:
		return json.Unmarshal([]byte(src), l)
	default:
		return fmt.Errorf("unsupported image list source type %T", value)
	}
}

// Value implements driver.Valuer.
func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

// Post represents a feed post. The system evolved from a single image_url to
// multi-image posts; both columns are kept so old rows keep rendering.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	ImageURL   string     `json:"image_url"`
	Images     ImageList  `gorm:"type:jsonb" json:"images"`
	Category   string     `gorm:"not null;default:general" json:"category"`
	Visibility Visibility `gorm:"type:jsonb" json:"visibility"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"author"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"comment_count"`
	// IsLiked indicates whether the requesting user liked this post (computed)
	IsLiked   bool           `gorm:"->" json:"is_liked"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VisibleTo decides whether a viewer may see this post: authors always see
// their own posts, everyone else goes through the audience predicate.
func (p *Post) VisibleTo(viewerID uint, profile Profile) bool {
	if viewerID != 0 && viewerID == p.UserID {
		return true
	}
	return p.Visibility.Matches(profile)
}

// ValidCategory reports whether c is one of the known post categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryGeneral, CategoryCareer, CategoryOpportunity, CategoryEvent:
		return true
	}
	return false
}
