package server

import (
	"errors"
	"time"

	"matrixart/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/page_size query parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// parsePagination extracts page and page_size query parameters with the
// given default page size. Out-of-range values are clamped by the service.
func parsePagination(c *fiber.Ctx, defaultPageSize int) Pagination {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// statusForError maps an application error to its HTTP status.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "CONFLICT":
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status derived from its error code.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}

// applyCookieIntents writes service-issued cookie changes to the response.
// All auth cookies are HttpOnly, SameSite=Lax, path=/.
func (s *Server) applyCookieIntents(c *fiber.Ctx, intents ...models.CookieIntent) {
	for _, intent := range intents {
		cookie := &fiber.Cookie{
			Name:     intent.Name,
			Value:    intent.Value,
			Expires:  intent.Expires,
			Path:     "/",
			HTTPOnly: true,
			Secure:   s.config.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if intent.Clear {
			cookie.Value = ""
			cookie.Expires = time.Now().Add(-time.Hour)
		}
		c.Cookie(cookie)
	}
}
