// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for post likes.
type LikeRepository interface {
	Insert(ctx context.Context, userID, postID uint) (bool, error)
	Remove(ctx context.Context, userID, postID uint) error
	Count(ctx context.Context, postID uint) (int64, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Insert attempts to create the like. Returns true when a new row was
// inserted and false when the (user, post) pair already had one. The ON
// CONFLICT DO NOTHING clause makes concurrent inserts race-safe: exactly one
// wins, the rest see zero rows affected.
func (r *likeRepository) Insert(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("insert", "likes")()

	like := models.Like{UserID: userID, PostID: postID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 1 {
		cache.Invalidate(ctx, cache.PostLikesKey(postID))
	}
	return result.RowsAffected == 1, nil
}

// Remove hard-deletes the like so the unique index slot frees immediately.
func (r *likeRepository) Remove(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PostLikesKey(postID))
	return nil
}

func (r *likeRepository) Count(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ListByUser returns a user's likes newest first, with the liked post
// attached for display.
func (r *likeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Preload("Post").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
