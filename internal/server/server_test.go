package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusEndpoint(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "Matrix Art Platform API v1.0", body["message"])

	endpoints := body["endpoints"].(map[string]any)
	assert.Equal(t, "/auth/*", endpoints["auth"])
	assert.Equal(t, "/posts/*", endpoints["posts"])
	assert.Equal(t, "/user/*", endpoints["user"])
}

func TestLivenessCheck(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "up", body["status"])
}

func TestReadinessCheckWithoutRedis(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["storage"])
	assert.Equal(t, "unavailable", checks["redis"])
}

func TestUnknownRouteReturns404(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
