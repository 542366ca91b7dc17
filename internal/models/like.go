package models

import "time"

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique; the composite unique
// index is what makes the like toggle safe under concurrent requests. Likes
// are hard-deleted on unlike so the index slot frees up immediately.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

// LikeToggleResult is the outcome of a like toggle operation.
type LikeToggleResult struct {
	Action     string `json:"action"` // "liked" or "unliked"
	LikesCount int64  `json:"likes_count"`
	IsLiked    bool   `json:"is_liked"`
}
