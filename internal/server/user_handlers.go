package server

import (
	"campusfeed/internal/models"
	"campusfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	user, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Fields omitted from the body
// are left untouched; batch, campus, and branch sent as empty strings are
// cleared to null.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	var req struct {
		Name      *string `json:"name"`
		AvatarURL *string `json:"avatarUrl"`
		Batch     *string `json:"batch"`
		Campus    *string `json:"campus"`
		Branch    *string `json:"branch"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:    userID,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Batch:     req.Batch,
		Campus:    req.Campus,
		Branch:    req.Branch,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}
