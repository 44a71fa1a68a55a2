package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"matrixart/internal/config"
	"matrixart/internal/models"
	"matrixart/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		Port:               "0",
		DataDir:            t.TempDir(),
		UploadsDir:         t.TempDir(),
		SessionLifetimeHrs: 24,
		AnonCookieDays:     30,
		MaxUploadSizeMB:    50,
		AllowedOrigins:     "*",
		Env:                "test",
	}

	srv, err := NewServerWithDeps(cfg, storage.NewMemoryBackend(), nil)
	require.NoError(t, err)

	return srv, srv.BuildApp()
}

// jsonRequest builds a request with a JSON body and optional cookies.
func jsonRequest(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

// decodeBody parses the response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// responseCookie finds a Set-Cookie value by name, or nil.
func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// registerAndLogin creates an account and returns its session cookie.
func registerAndLogin(t *testing.T, app *fiber.App, username string) *http.Cookie {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/auth/register", fiber.Map{
		"username": username,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	password := body["generated_password"].(string)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
		"username": username,
		"password": password,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = decodeBody(t, resp)

	cookie := responseCookie(resp, models.SessionCookieName)
	require.NotNil(t, cookie)
	return cookie
}

// uploadFile posts a multipart upload and returns the stored name.
func uploadFile(t *testing.T, app *fiber.App, filename string, content []byte) (string, *http.Response) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	if resp.StatusCode != http.StatusCreated {
		return "", resp
	}
	body := decodeBody(t, resp)
	return body["stored_name"].(string), resp
}
