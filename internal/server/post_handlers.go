package server

import (
	"encoding/json"
	"strconv"

	"campusfeed/internal/models"
	"campusfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	var req struct {
		Content    string          `json:"content"`
		ImageURL   string          `json:"imageUrl"`
		Images     []string        `json:"images"`
		Category   string          `json:"category"`
		Visibility json.RawMessage `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:     userID,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Images:     req.Images,
		Category:   req.Category,
		Visibility: req.Visibility,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	postID, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	viewerID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	targetID, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	posts, err := s.postService.GetUserPosts(c.UserContext(), targetID, limit, offset, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": posts,
	})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	postID, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), userID, postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted",
	})
}

// LikePost handles POST /api/posts/:id/like. The operation is a toggle;
// liking an already-liked post removes the like.
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	postID, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	post, err := s.postService.ToggleLike(c.UserContext(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}
