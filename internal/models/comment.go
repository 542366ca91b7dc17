package models

import (
	"time"

	"gorm.io/gorm"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	// CommentStatusPending hides the comment from public listings until approved.
	CommentStatusPending CommentStatus = "PENDING"
	// CommentStatusApproved makes the comment publicly visible.
	CommentStatusApproved CommentStatus = "APPROVED"
)

// ValidCommentStatus reports whether s is a known comment status.
func ValidCommentStatus(s CommentStatus) bool {
	return s == CommentStatusPending || s == CommentStatusApproved
}

// Comment represents a comment on a post. A comment with a nil ParentID is a
// top-level comment; otherwise it is a reply. A reply's parent must belong to
// the same post.
type Comment struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	Content  string        `gorm:"type:text;not null" json:"content"`
	AuthorID uint          `gorm:"not null;index" json:"author_id"`
	PostID   uint          `gorm:"not null;index" json:"post_id"`
	ParentID *uint         `gorm:"index" json:"parent_id,omitempty"`
	Status   CommentStatus `gorm:"type:varchar(16);not null;default:PENDING;index" json:"status"`
	Author   User          `gorm:"foreignKey:AuthorID" json:"author"`
	Post     Post          `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Replies  []Comment     `gorm:"foreignKey:ParentID" json:"replies"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
