// Package service implements the application's business logic.
package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// IdentityService resolves commenter identities by email. Unknown emails get
// a lightweight account with no password; known emails reuse the existing
// account so a reader's history stays attached to one user row.
type IdentityService struct {
	userRepo repository.UserRepository
}

// NewIdentityService returns a new IdentityService.
func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// ResolveInput carries the commenter-provided identity fields.
type ResolveInput struct {
	Email string
	Name  string
}

// Resolve finds or creates the user for the given email. Two concurrent
// resolves for the same new email may both attempt the insert; the loser hits
// the unique constraint and re-fetches the winner's row, so both calls return
// the same user.
func (s *IdentityService) Resolve(ctx context.Context, in ResolveInput) (*models.User, error) {
	if err := validation.ValidateEmail(strings.TrimSpace(in.Email)); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDisplayName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	email := validation.NormalizeEmail(in.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	newUser := &models.User{
		Name:  strings.TrimSpace(in.Name),
		Email: email,
		Role:  models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
			// Lost the race to a concurrent resolve; use the winner's row.
			existing, fetchErr := s.userRepo.GetByEmail(ctx, email)
			if fetchErr != nil {
				return nil, fetchErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	return newUser, nil
}
