// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is the access level of a user account.
type UserRole string

const (
	// RoleUser is the default role for readers and commenters.
	RoleUser UserRole = "USER"
	// RoleAdmin grants access to the moderation and analytics surfaces.
	RoleAdmin UserRole = "ADMIN"
)

// User represents a reader, commenter, or author of the blog.
// Users created implicitly by the identity resolver (first comment or like
// from an unknown email) have an empty Password and cannot log in.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `json:"-"`
	Role      UserRole       `gorm:"type:varchar(16);not null;default:USER" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Comments  []Comment      `gorm:"foreignKey:AuthorID" json:"comments,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
