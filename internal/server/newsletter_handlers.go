package server

import (
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Subscribe adds an email to the newsletter list.
// POST /api/newsletter
func (s *Server) Subscribe(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Email string `json:"email"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	subscriber := &models.Subscriber{
		Email: validation.NormalizeEmail(req.Email),
	}
	if err := s.subscriberRepo.Create(ctx, subscriber); err != nil {
		status := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
			status = fiber.StatusConflict
		}
		observability.EngagementEvents.WithLabelValues("newsletter_subscribe", "error").Inc()
		return models.RespondWithError(c, status, err)
	}

	observability.EngagementEvents.WithLabelValues("newsletter_subscribe", "ok").Inc()
	return c.Status(fiber.StatusCreated).JSON(subscriber)
}

// Unsubscribe removes an email from the newsletter list.
// DELETE /api/newsletter
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Email string `json:"email"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if err := s.subscriberRepo.Delete(ctx, validation.NormalizeEmail(req.Email)); err != nil {
		status := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			status = fiber.StatusNotFound
		}
		return models.RespondWithError(c, status, err)
	}

	return c.JSON(fiber.Map{
		"message": "Unsubscribed",
	})
}
