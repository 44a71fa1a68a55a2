package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/repository"
	"matrixart/internal/service"
	"matrixart/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*service.AuthService, string) {
	t.Helper()

	backend := storage.NewMemoryBackend()
	users := repository.NewUserRepository(storage.NewCollection[models.User](backend, "users.json"))
	sessions := repository.NewSessionRepository(storage.NewCollection[models.Session](backend, "sessions.json"))
	counters := repository.NewCounterRepository(storage.NewDocument[models.Counters](backend, "counters.json"))
	auth := service.NewAuthService(users, sessions, counters, 24*time.Hour)

	ctx := context.Background()
	result, err := auth.Register(ctx, service.RegisterInput{Username: "alice"})
	require.NoError(t, err)
	login, err := auth.Login(ctx, "alice", result.GeneratedPassword)
	require.NoError(t, err)

	return auth, login.Token
}

func newAuthApp(auth *service.AuthService) *fiber.App {
	app := fiber.New()
	app.Use(ResolveIdentity(auth))
	app.Get("/open", func(c *fiber.Ctx) error {
		identity := CallerIdentity(c)
		if identity == nil {
			return c.JSON(fiber.Map{"caller": nil})
		}
		return c.JSON(fiber.Map{"caller": identity.AnonUsername, "authenticated": identity.Authenticated()})
	})
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals(UserIDKeyLocal)})
	})
	return app
}

func TestAuthRequiredWithSessionCookie(t *testing.T) {
	auth, token := newAuthFixture(t)
	app := newAuthApp(auth)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: models.SessionCookieName, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequiredWithBearerHeader(t *testing.T) {
	auth, token := newAuthFixture(t)
	app := newAuthApp(auth)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequiredRejections(t *testing.T) {
	auth, _ := newAuthFixture(t)
	app := newAuthApp(auth)

	tests := []struct {
		name  string
		setup func(req *http.Request)
	}{
		{"no credentials", func(req *http.Request) {}},
		{"unknown token", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: models.SessionCookieName, Value: "bogus"})
		}},
		{"malformed header", func(req *http.Request) {
			req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		}},
		{"anon cookie only", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: models.AnonCookieName, Value: "neo"})
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tc.setup(req)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestResolveIdentityAnonCookiePassthrough(t *testing.T) {
	auth, _ := newAuthFixture(t)
	app := newAuthApp(auth)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: models.AnonCookieName, Value: "neo"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionTokenCookieWinsOverHeader(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = SessionToken(c)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: models.SessionCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", got)
}
