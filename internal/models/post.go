// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog entry owned by exactly one user. Only the owning
// user may mutate or delete it; ownership is enforced at the flow layer.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
