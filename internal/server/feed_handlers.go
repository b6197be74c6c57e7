package server

import (
	"strconv"

	"campusfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed. Query params:
//
//	cursor - RFC3339Nano timestamp; only posts strictly older are returned.
//	         Absent or unparseable means "start of feed".
//	limit  - page size, clamped by the service.
//
// The response body is {"data": [...], "nextCursor": "..."} where nextCursor
// is null once the feed is exhausted.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	viewerID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil {
			limit = parsed
		}
	}

	page, err := s.feedService.GetFeed(c.UserContext(), viewerID, c.Query("cursor"), limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(page)
}
