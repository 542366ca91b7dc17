package server

import (
	"errors"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetLikes returns the like count for a post (public).
// GET /api/likes?postId=123
func (s *Server) GetLikes(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseQueryID(c, "postId")
	if err != nil {
		return nil
	}

	count, err := s.likeService.CountForPost(ctx, postID)
	if err != nil {
		status := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			status = fiber.StatusNotFound
		}
		return models.RespondWithError(c, status, err)
	}

	resp := fiber.Map{
		"post_id":     postID,
		"likes_count": count,
	}
	if userID, ok := s.optionalUserID(c); ok {
		if liked, likedErr := s.likeService.IsLiked(ctx, userID, postID); likedErr == nil {
			resp["is_liked"] = liked
		}
	}

	return c.JSON(resp)
}

// ToggleLike toggles a like on a post. Authenticated users like under their
// own account; anonymous visitors supply email and name in the body.
// POST /api/likes
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		PostID uint   `json:"postId"`
		Email  string `json:"userEmail"`
		Name   string `json:"userName"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	input := service.ToggleInput{
		PostID: req.PostID,
		Email:  req.Email,
		Name:   req.Name,
	}
	if userID, ok := s.optionalUserID(c); ok {
		input.UserID = userID
	}

	result, err := s.likeService.Toggle(ctx, input)
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

	s.publishBroadcastEvent(EventLikeToggled, map[string]interface{}{
		"post_id":     req.PostID,
		"action":      result.Action,
		"likes_count": result.LikesCount,
		"updated_at":  time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.JSON(result)
}
