package server

import (
	"errors"

	"matrixart/internal/middleware"
	"matrixart/internal/models"
	"matrixart/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	InstagramHandle string `json:"instagram_handle"`
	TelegramHandle  string `json:"telegram_handle"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type checkUsernameRequest struct {
	Username string `json:"username"`
}

// Register creates a new account. The password is generated server-side
// and returned exactly once in the response.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username:        req.Username,
		DisplayName:     req.DisplayName,
		InstagramHandle: req.InstagramHandle,
		TelegramHandle:  req.TelegramHandle,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login verifies credentials and sets the session cookie.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	result, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	s.applyCookieIntents(c, result.Cookie)
	return c.JSON(result)
}

// Logout destroys the session (if any) and clears the auth cookies.
// Always succeeds.
func (s *Server) Logout(c *fiber.Ctx) error {
	intents, err := s.authService.Logout(c.UserContext(), middleware.SessionToken(c))
	if err != nil {
		return respondError(c, err)
	}

	s.applyCookieIntents(c, intents...)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// CheckUsername reports whether a username is still available. An
// invalid candidate is reported as unavailable with the reason, so the
// client can surface it inline.
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	var req checkUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	available, err := s.authService.CheckUsername(c.UserContext(), req.Username)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			return c.JSON(fiber.Map{
				"username":  req.Username,
				"available": false,
				"error":     appErr.Message,
			})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"username":  req.Username,
		"available": available,
	})
}
