package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// CommentService owns comment creation and the public thread listing.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	identity    *IdentityService
	preModerate func() bool
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

// CreateCommentInput carries everything needed to create a comment. AuthorID
// is set for authenticated requests; anonymous requests carry Email and Name
// and go through the identity resolver.
type CreateCommentInput struct {
	AuthorID uint
	Email    string
	Name     string
	PostID   uint
	ParentID *uint
	Content  string
}

// DeleteCommentInput identifies a comment and the user requesting deletion.
type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

// NewCommentService returns a new CommentService. preModerate reports whether
// new comments start hidden; isAdmin checks the requesting user's role.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	identity *IdentityService,
	preModerate func() bool,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		identity:    identity,
		preModerate: preModerate,
		isAdmin:     isAdmin,
	}
}

// CreateComment validates the input, resolves the author, applies the
// moderation gate, and stores the comment. Validation happens before any row
// is written so a rejected comment leaves no trace.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			return nil, models.NewValidationError("Replies cannot be nested")
		}
	}

	author, err := s.resolveAuthor(ctx, in)
	if err != nil {
		return nil, err
	}

	status := models.CommentStatusApproved
	if s.preModerate != nil && s.preModerate() && !author.IsAdmin() {
		status = models.CommentStatusPending
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: author.ID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
		Status:   status,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		observability.EngagementEvents.WithLabelValues("comment_create", "error").Inc()
		return nil, err
	}
	observability.EngagementEvents.WithLabelValues("comment_create", "ok").Inc()

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) resolveAuthor(ctx context.Context, in CreateCommentInput) (*models.User, error) {
	if in.AuthorID != 0 {
		// Authenticated path: trust the token, not the form fields.
		return s.getUserByID(ctx, in.AuthorID)
	}
	return s.identity.Resolve(ctx, ResolveInput{Email: in.Email, Name: in.Name})
}

func (s *CommentService) getUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.identity.userRepo.GetByID(ctx, userID)
}

// ListThread returns the public comment thread for a post.
func (s *CommentService) ListThread(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListApprovedByPost(ctx, postID)
}

// ListByAuthor returns all of a user's comments, every status included, so
// readers can see their own pending comments.
func (s *CommentService) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByAuthor(ctx, authorID)
}

// DeleteComment removes a comment and its replies. Allowed for the comment's
// author or an admin.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != in.UserID {
		if s.isAdmin == nil {
			return nil, models.NewUnauthorizedError("You can only delete your own comments")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewUnauthorizedError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.DeleteWithReplies(ctx, in.CommentID); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.PostCommentsKey(comment.PostID))
	observability.EngagementEvents.WithLabelValues("comment_delete", "ok").Inc()

	return comment, nil
}
