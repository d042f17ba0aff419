package models

import (
	"time"
)

type PostStatus string

const (
	StatusPublished PostStatus = "published"
	StatusDraft     PostStatus = "draft"
	StatusHidden    PostStatus = "hidden"
)

// Valid reports whether s is one of the three lifecycle states
func (s PostStatus) Valid() bool {
	switch s {
	case StatusPublished, StatusDraft, StatusHidden:
		return true
	}
	return false
}

type Post struct {
	ID      uint       `gorm:"primaryKey" json:"id"`
	Title   string     `gorm:"type:varchar(255);not null" json:"title"`
	Content string     `gorm:"type:text;not null" json:"content"`
	Author  string     `gorm:"type:varchar(100);not null" json:"author"` // display name at creation time
	UserID  *uint      `gorm:"index" json:"user_id"`                     // nil for legacy posts
	Status  PostStatus `gorm:"type:varchar(20);not null;default:'published';index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Storage-level cascade: comments go with their post
	Comments []Comment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Post) OwnerID() *uint {
	return p.UserID
}
