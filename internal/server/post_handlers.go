package server

import (
	"errors"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPosts returns published posts with engagement counts (public).
// GET /api/posts?limit=20&offset=0
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 20)

	posts, err := s.postRepo.ListPublished(ctx, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GetPostBySlug returns a single published post by slug (public).
// GET /api/posts/:slug
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	ctx := c.UserContext()

	slug := strings.TrimSpace(c.Params("slug"))
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid slug"))
	}

	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		status := fiber.StatusInternalServerError
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			status = fiber.StatusNotFound
		}
		return models.RespondWithError(c, status, err)
	}

	return c.JSON(post)
}
