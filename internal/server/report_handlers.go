package server

import (
	"campusfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ReportPost handles POST /api/posts/:id/report. Reporting the same post
// twice is a no-op; the first report wins.
func (s *Server) ReportPost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	postID, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.reportService.ReportPost(c.UserContext(), userID, postID, req.Reason); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Report submitted",
	})
}
