// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines read operations for posts. Post authoring lives in
// the publishing surface; the engagement subsystem only reads.
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyEngagementCounts adds subqueries to fetch like and approved-comment
// counts in a single query.
func (r *postRepository) applyEngagementCounts(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.status = 'APPROVED' AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count")
}

// GetByID resolves a post for engagement writes. Drafts are invisible to
// this subsystem, so a draft id behaves like a missing one.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.applyEngagementCounts(r.db.WithContext(ctx)).
		Preload("Author").
		Where("status = ?", models.PostStatusPublished).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(slug)

	err := cache.CacheAside(ctx, key, &post, cache.PostTTL, func() error {
		fetchErr := r.applyEngagementCounts(r.db.WithContext(ctx)).
			Preload("Author").
			Where("slug = ? AND status = ?", slug, models.PostStatusPublished).
			First(&post).Error
		if fetchErr != nil {
			if errors.Is(fetchErr, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", slug)
			}
			return models.NewInternalError(fetchErr)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.CacheAside(ctx, cache.PostListKey(limit, offset), &posts, cache.PostListTTL, func() error {
		fetchErr := r.applyEngagementCounts(r.db.WithContext(ctx)).
			Preload("Author").
			Where("status = ?", models.PostStatusPublished).
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&posts).Error
		if fetchErr != nil {
			return models.NewInternalError(fetchErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}
