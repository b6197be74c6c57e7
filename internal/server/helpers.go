package server

import (
	"strconv"
	"strings"

	"campusfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID parses a positive integer route parameter. On failure it writes a
// 400 response and returns ok=false; the caller should return nil immediately.
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, false
	}
	return uint(id), true
}

// currentUserID reads the authenticated user's ID stored by AuthRequired.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok
}

// humanizeParam turns a camelCase route param into words for error messages,
// e.g. "commentId" -> "comment id".
func humanizeParam(param string) string {
	return strings.ToLower(strings.Join(splitCamel(param), " "))
}

func splitCamel(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// respondServiceError maps service-layer errors onto HTTP status codes.
func respondServiceError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*models.AppError); ok {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusForbidden, appErr)
		case "STORAGE_ERROR":
			return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}
