package server

import (
	"errors"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns the approved comment thread for a post (public).
// GET /api/comments?postId=123
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseQueryID(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListThread(ctx, postID)
	if err != nil {
		status := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			status = fiber.StatusNotFound
		}
		return models.RespondWithError(c, status, err)
	}

	return c.JSON(comments)
}

// CreateComment creates a comment on a post. Authenticated users comment
// under their own account; anonymous visitors supply email and name in the
// body and the identity resolver finds or creates a user for them.
// POST /api/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		PostID   uint   `json:"postId"`
		ParentID *uint  `json:"parentId"`
		Content  string `json:"content"`
		Email    string `json:"authorEmail"`
		Name     string `json:"authorName"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	input := service.CreateCommentInput{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		Content:  req.Content,
		Email:    req.Email,
		Name:     req.Name,
	}
	if userID, ok := s.optionalUserID(c); ok {
		input.AuthorID = userID
	}

	created, err := s.commentService.CreateComment(ctx, input)
	if err != nil {
		status := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case "VALIDATION_ERROR":
				status = fiber.StatusBadRequest
			case "NOT_FOUND":
				status = fiber.StatusNotFound
			}
		}
		return models.RespondWithError(c, status, err)
	}

	// Pending comments stay invisible until a moderator approves them, so
	// only approved comments are announced to live readers.
	if created.Status == models.CommentStatusApproved {
		s.publishBroadcastEvent(EventCommentCreated, map[string]interface{}{
			"post_id":    created.PostID,
			"comment":    created,
			"author":     authorSummary(created.Author),
			"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteComment deletes a comment and its replies (owner or admin).
// DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    userID,
		CommentID: commentID,
	})
	if err != nil {
		status := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case "NOT_FOUND":
				status = fiber.StatusNotFound
			case "UNAUTHORIZED":
				status = fiber.StatusForbidden
			}
		}
		return models.RespondWithError(c, status, err)
	}

	s.publishBroadcastEvent(EventCommentDeleted, map[string]interface{}{
		"post_id":    comment.PostID,
		"comment_id": commentID,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.SendStatus(fiber.StatusOK)
}
