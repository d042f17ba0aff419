package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Author    string    `gorm:"type:varchar(100);not null" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (c *Comment) OwnerID() *uint {
	return c.UserID
}
