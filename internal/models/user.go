// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultAvatar is the placeholder image assigned to accounts that never
// uploaded a picture. It is never deleted from avatar storage.
const DefaultAvatar = "default.jpg"

// User represents a registered account. Password always holds a bcrypt hash,
// never the raw input. Users are created on registration and mutated on
// account updates; the application never deletes them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:20;unique;not null" json:"username"`
	Email     string    `gorm:"size:120;unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	ImageFile string    `gorm:"size:40;not null;default:default.jpg" json:"image_file"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
