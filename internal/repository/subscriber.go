package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// SubscriberRepository defines persistence operations for newsletter subscribers.
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *models.Subscriber) error
	Delete(ctx context.Context, email string) error
	Count(ctx context.Context) (int64, error)
}

type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new subscriber repository
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	if err := r.db.WithContext(ctx).Create(subscriber).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("Email is already subscribed")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriberRepository) Delete(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.Subscriber{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Subscriber", email)
	}
	return nil
}

func (r *subscriberRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subscriber{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
