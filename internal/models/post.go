package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	// PostStatusDraft hides the post from all public surfaces.
	PostStatusDraft PostStatus = "DRAFT"
	// PostStatusPublished makes the post publicly visible.
	PostStatusPublished PostStatus = "PUBLISHED"
)

// Post represents a blog post. Post authoring is owned by the publishing
// surface; the engagement subsystem only reads posts to attach comments and
// likes to them.
type Post struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Title    string     `gorm:"not null" json:"title"`
	Slug     string     `gorm:"unique;not null" json:"slug"`
	Content  string     `gorm:"type:text;not null" json:"content"`
	Status   PostStatus `gorm:"type:varchar(16);not null;default:DRAFT" json:"status"`
	AuthorID uint       `gorm:"not null;index" json:"author_id"`
	Author   User       `gorm:"foreignKey:AuthorID" json:"author"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int            `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
