package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// LikeService owns the like toggle for posts.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	identity *IdentityService
}

// NewLikeService returns a new LikeService.
func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	identity *IdentityService,
) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		postRepo: postRepo,
		identity: identity,
	}
}

// ToggleInput identifies the liker. UserID is set for authenticated requests;
// anonymous requests carry Email and Name.
type ToggleInput struct {
	UserID uint
	Email  string
	Name   string
	PostID uint
}

// Toggle flips the like state for (user, post). The insert-first approach
// makes the toggle race-safe: the ON CONFLICT insert either wins (liked) or
// sees the existing row (unlike it). Concurrent toggles for the same pair
// settle on one of the two states, never a duplicate.
func (s *LikeService) Toggle(ctx context.Context, in ToggleInput) (*models.LikeToggleResult, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	userID := in.UserID
	if userID == 0 {
		user, err := s.identity.Resolve(ctx, ResolveInput{Email: in.Email, Name: in.Name})
		if err != nil {
			return nil, err
		}
		userID = user.ID
	}

	inserted, err := s.likeRepo.Insert(ctx, userID, in.PostID)
	if err != nil {
		observability.EngagementEvents.WithLabelValues("like_toggle", "error").Inc()
		return nil, err
	}

	result := &models.LikeToggleResult{}
	if inserted {
		result.Action = "liked"
		result.IsLiked = true
	} else {
		if err := s.likeRepo.Remove(ctx, userID, in.PostID); err != nil {
			observability.EngagementEvents.WithLabelValues("like_toggle", "error").Inc()
			return nil, err
		}
		result.Action = "unliked"
		result.IsLiked = false
	}

	count, err := s.likeRepo.Count(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	result.LikesCount = count

	cache.InvalidatePost(ctx, post.ID, post.Slug)
	observability.EngagementEvents.WithLabelValues("like_toggle", "ok").Inc()

	return result, nil
}

// IsLiked reports whether the user currently likes the post.
func (s *LikeService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeRepo.IsLiked(ctx, userID, postID)
}

// CountForPost returns the like count for a post, cached briefly since it is
// the hottest read on a post page.
func (s *LikeService) CountForPost(ctx context.Context, postID uint) (int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return 0, err
	}

	var count int64
	err := cache.CacheAside(ctx, cache.PostLikesKey(postID), &count, cache.PostLikesTTL, func() error {
		fresh, fetchErr := s.likeRepo.Count(ctx, postID)
		if fetchErr != nil {
			return fetchErr
		}
		count = fresh
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListByUser returns the posts a user has liked.
func (s *LikeService) ListByUser(ctx context.Context, userID uint) ([]models.Like, error) {
	return s.likeRepo.ListByUser(ctx, userID)
}
