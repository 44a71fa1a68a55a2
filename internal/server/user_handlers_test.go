package server

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMyProfileRequiresAuth(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/user/profile", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetMyProfile(t *testing.T) {
	_, app := newTestServer(t)
	session := registerAndLogin(t, app, "alice")

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/user/profile", nil, session))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, body, "password_hash")
}

func TestUpdateMyProfilePartial(t *testing.T) {
	_, app := newTestServer(t)
	session := registerAndLogin(t, app, "alice")

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/user/profile", fiber.Map{
		"display_name": "Trinity",
	}, session))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Trinity", body["display_name"])

	// A second update of one field leaves the rest alone.
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/user/profile", fiber.Map{
		"instagram_handle": "@trinity",
	}, session))
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, "Trinity", body["display_name"])
	assert.Equal(t, "@trinity", body["instagram_handle"])
}

func TestGetUserProfilePublic(t *testing.T) {
	_, app := newTestServer(t)
	registerAndLogin(t, app, "alice")

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/user/alice", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "alice", body["username"])

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/user/nobody", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetUserPosts(t *testing.T) {
	_, app := newTestServer(t)
	session := registerAndLogin(t, app, "alice")
	storedName, _ := uploadFile(t, app, "art.png", []byte("pixels"))

	for range [2]struct{}{} {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/posts", fiber.Map{
			"title":     "Untitled",
			"file_path": storedName,
		}, session))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = decodeBody(t, resp)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/user/alice/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["posts"].([]any), 2)
}
