package server

import (
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminListComments returns comments across all posts for the moderation
// queue, optionally filtered by status.
// GET /api/admin/comments?status=PENDING&limit=50&offset=0
func (s *Server) AdminListComments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 50)
	status := models.CommentStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))

	comments, err := s.moderationService.ListAll(ctx, status, page.Limit, page.Offset)
	if err != nil {
		respStatus := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			respStatus = fiber.StatusBadRequest
		}
		return models.RespondWithError(c, respStatus, err)
	}

	return c.JSON(fiber.Map{
		"comments": comments,
		"limit":    page.Limit,
		"offset":   page.Offset,
	})
}

// AdminSetCommentStatus approves or unapproves a comment.
// PATCH /api/admin/comments/:id/status
func (s *Server) AdminSetCommentStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	status := models.CommentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	comment, err := s.moderationService.SetStatus(ctx, commentID, status)
	if err != nil {
		respStatus := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case "VALIDATION_ERROR":
				respStatus = fiber.StatusBadRequest
			case "NOT_FOUND":
				respStatus = fiber.StatusNotFound
			}
		}
		return models.RespondWithError(c, respStatus, err)
	}

	// Approval makes the comment visible; tell live readers and the author.
	eventType := EventCommentRejected
	if comment.Status == models.CommentStatusApproved {
		eventType = EventCommentApproved
		s.publishBroadcastEvent(EventCommentCreated, map[string]interface{}{
			"post_id":    comment.PostID,
			"comment":    comment,
			"author":     authorSummary(comment.Author),
			"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	s.publishUserEvent(comment.AuthorID, eventType, map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
		"status":     comment.Status,
	})

	return c.JSON(comment)
}

// AdminDeleteComment removes a comment and its replies regardless of owner.
// DELETE /api/admin/comments/:id
func (s *Server) AdminDeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.Delete(ctx, commentID); err != nil {
		respStatus := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			respStatus = fiber.StatusNotFound
		}
		return models.RespondWithError(c, respStatus, err)
	}

	s.publishBroadcastEvent(EventCommentDeleted, map[string]interface{}{
		"comment_id": commentID,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.SendStatus(fiber.StatusOK)
}

// AdminAnalytics returns aggregate engagement statistics.
// GET /api/admin/analytics?period=30
func (s *Server) AdminAnalytics(c *fiber.Ctx) error {
	ctx := c.UserContext()

	period := c.QueryInt("period", 30)

	stats, err := s.moderationService.Stats(ctx, period)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(stats)
}
