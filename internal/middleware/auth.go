// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strings"

	"matrixart/internal/models"
	"matrixart/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityKey is the Fiber local holding the resolved *models.Identity.
	IdentityKey = "identity"
	// UserIDKeyLocal is the Fiber local holding the authenticated user ID.
	UserIDKeyLocal = "userID"
)

// SessionToken extracts the session token from the request: the session
// cookie wins, a "Bearer <token>" Authorization header is the fallback.
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(models.SessionCookieName); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// ResolveIdentity resolves the caller on every request and stores the
// result in Fiber locals. Requests without credentials pass through with
// no identity set; only AuthRequired turns that into a 401.
func ResolveIdentity(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := models.RequestContext{
			SessionToken: SessionToken(c),
			AnonUsername: c.Cookies(models.AnonCookieName),
		}

		identity, err := auth.ResolveCaller(c.UserContext(), rc)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if identity != nil {
			c.Locals(IdentityKey, identity)
			if identity.Authenticated() {
				c.Locals(UserIDKeyLocal, identity.User.ID)
			}
		}
		return c.Next()
	}
}

// AuthRequired enforces an authenticated session for protected routes.
// It must run after ResolveIdentity.
func AuthRequired(c *fiber.Ctx) error {
	identity := CallerIdentity(c)
	if identity == nil || !identity.Authenticated() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return c.Next()
}

// CallerIdentity returns the identity resolved for this request, or nil.
func CallerIdentity(c *fiber.Ctx) *models.Identity {
	if identity, ok := c.Locals(IdentityKey).(*models.Identity); ok {
		return identity
	}
	return nil
}
