// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListApprovedByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Comment, error)
	ListAll(ctx context.Context, status models.CommentStatus, limit, offset int) ([]*models.Comment, error)
	UpdateStatus(ctx context.Context, id uint, status models.CommentStatus) error
	DeleteWithReplies(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[models.CommentStatus]int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PostCommentsKey(comment.PostID))
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.CommentStatusApproved).Order("created_at ASC")
		}).
		Preload("Replies.Author").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	if comment.Replies == nil {
		comment.Replies = []models.Comment{}
	}
	return &comment, nil
}

// ListApprovedByPost returns the public thread for a post: approved top-level
// comments newest first, each with its approved replies oldest first.
func (r *commentRepository) ListApprovedByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("select", "comments")()

	var comments []*models.Comment
	err := cache.CacheAside(ctx, cache.PostCommentsKey(postID), &comments, cache.PostCommentsTTL, func() error {
		err := r.db.WithContext(ctx).
			Preload("Author").
			Preload("Replies", func(db *gorm.DB) *gorm.DB {
				return db.Where("status = ?", models.CommentStatusApproved).Order("created_at ASC")
			}).
			Preload("Replies.Author").
			Where("post_id = ? AND parent_id IS NULL AND status = ?", postID, models.CommentStatusApproved).
			Order("created_at DESC").
			Find(&comments).Error
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByAuthor returns every comment by the author regardless of moderation
// status, newest first, with the owning post attached.
func (r *commentRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Post").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListAll returns comments across all posts for the moderation table. An
// empty status returns every comment.
func (r *commentRepository) ListAll(ctx context.Context, status models.CommentStatus, limit, offset int) ([]*models.Comment, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Post")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var comments []*models.Comment
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateStatus(ctx context.Context, id uint, status models.CommentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// DeleteWithReplies removes a comment and its direct replies in one
// transaction. Replies never nest deeper than one level.
func (r *commentRepository) DeleteWithReplies(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Comment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) CountByStatus(ctx context.Context) (map[models.CommentStatus]int64, error) {
	type statusCount struct {
		Status models.CommentStatus
		Count  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := map[models.CommentStatus]int64{
		models.CommentStatusPending:  0,
		models.CommentStatusApproved: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
