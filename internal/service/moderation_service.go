package service

import (
	"context"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// TopPost is a row in the period leaderboard: a post ranked by the
// engagement it collected within the period.
type TopPost struct {
	PostID   uint   `json:"post_id" gorm:"column:id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
}

// EngagementStats aggregates engagement data for the admin dashboard.
type EngagementStats struct {
	TotalComments    int64             `json:"total_comments"`
	ApprovedComments int64             `json:"approved_comments"`
	PendingComments  int64             `json:"pending_comments"`
	TotalLikes       int64             `json:"total_likes"`
	TotalUsers       int64             `json:"total_users"`
	TotalSubscribers int64             `json:"total_subscribers"`
	PublishedPosts   int64             `json:"published_posts"`
	PeriodDays       int               `json:"period_days"`
	TopPosts         []TopPost         `json:"top_posts"`
	RecentComments   []*models.Comment `json:"recent_comments"`
}

// ModerationService provides the admin moderation surface over comments.
type ModerationService struct {
	commentRepo repository.CommentRepository
	db          *gorm.DB
}

// NewModerationService returns a new ModerationService. The db handle is used
// for dashboard aggregates that span several tables.
func NewModerationService(commentRepo repository.CommentRepository, db *gorm.DB) *ModerationService {
	return &ModerationService{commentRepo: commentRepo, db: db}
}

// SetStatus transitions a comment between PENDING and APPROVED and returns
// the updated comment. Unknown statuses are rejected before touching the row.
func (s *ModerationService) SetStatus(ctx context.Context, commentID uint, status models.CommentStatus) (*models.Comment, error) {
	if !models.ValidCommentStatus(status) {
		return nil, models.NewValidationError("Status must be PENDING or APPROVED")
	}

	if err := s.commentRepo.UpdateStatus(ctx, commentID, status); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PostCommentsKey(comment.PostID))
	observability.EngagementEvents.WithLabelValues("moderation_set_status", "ok").Inc()

	return comment, nil
}

// ListAll returns the moderation table: comments across all posts, optionally
// filtered by status.
func (s *ModerationService) ListAll(ctx context.Context, status models.CommentStatus, limit, offset int) ([]*models.Comment, error) {
	if status != "" && !models.ValidCommentStatus(status) {
		return nil, models.NewValidationError("Status must be PENDING or APPROVED")
	}
	return s.commentRepo.ListAll(ctx, status, limit, offset)
}

// Delete removes a comment and its replies from the admin surface.
func (s *ModerationService) Delete(ctx context.Context, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if err := s.commentRepo.DeleteWithReplies(ctx, commentID); err != nil {
		return err
	}

	cache.Invalidate(ctx, cache.PostCommentsKey(comment.PostID))
	observability.EngagementEvents.WithLabelValues("moderation_delete", "ok").Inc()
	return nil
}

// Stats returns aggregate engagement numbers for the admin dashboard,
// including a top-posts leaderboard for the trailing period.
func (s *ModerationService) Stats(ctx context.Context, periodDays int) (*EngagementStats, error) {
	if periodDays <= 0 {
		periodDays = 30
	}

	byStatus, err := s.commentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &EngagementStats{
		ApprovedComments: byStatus[models.CommentStatusApproved],
		PendingComments:  byStatus[models.CommentStatusPending],
		PeriodDays:       periodDays,
	}
	stats.TotalComments = stats.ApprovedComments + stats.PendingComments

	if err := s.db.WithContext(ctx).Model(&models.Like{}).Count(&stats.TotalLikes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Subscriber{}).Count(&stats.TotalSubscribers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished).
		Count(&stats.PublishedPosts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	// Postgres resolves output aliases in a bare ORDER BY but not inside an
	// expression, so the aliased select goes in a derived table and the
	// ordering happens one level up.
	cutoff := time.Now().AddDate(0, 0, -periodDays)
	engaged := s.db.WithContext(ctx).
		Table("posts").
		Select("posts.id, posts.title, posts.slug, "+
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND likes.created_at > ?) as likes, "+
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.created_at > ? AND comments.deleted_at IS NULL) as comments",
			cutoff, cutoff).
		Where("posts.status = ? AND posts.deleted_at IS NULL", models.PostStatusPublished)
	if err := s.db.WithContext(ctx).
		Table("(?) as engaged", engaged).
		Order("(likes + comments) DESC").
		Limit(5).
		Scan(&stats.TopPosts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	recent, err := s.commentRepo.ListAll(ctx, "", 5, 0)
	if err != nil {
		return nil, err
	}
	stats.RecentComments = recent

	return stats, nil
}
