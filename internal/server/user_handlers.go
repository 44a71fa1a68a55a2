package server

import (
	"matrixart/internal/middleware"
	"matrixart/internal/models"
	"matrixart/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	DisplayName     *string `json:"display_name"`
	InstagramHandle *string `json:"instagram_handle"`
	TelegramHandle  *string `json:"telegram_handle"`
}

// GetMyProfile returns the authenticated caller's profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)

	profile, err := s.userService.GetProfile(c.UserContext(), identity.User.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile applies a partial profile update. Fields absent from
// the body are left untouched.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:          identity.User.ID,
		DisplayName:     req.DisplayName,
		InstagramHandle: req.InstagramHandle,
		TelegramHandle:  req.TelegramHandle,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetUserProfile returns the public profile for a username.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	profile, err := s.userService.GetByUsername(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetUserPosts returns all posts by a user, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")

	posts, err := s.postService.ListByUser(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
