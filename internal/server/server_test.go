package server

import (
	"errors"
	"net/http"
	"testing"

	"dojo/internal/models"
	"dojo/internal/storage"
	"dojo/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"postId", "post ID"},
		{"commentId", "comment ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.NewValidationError("bad"), fiber.StatusBadRequest},
		{models.NewFieldError("title", "required"), fiber.StatusBadRequest},
		{models.NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{models.NewForbiddenError("no"), fiber.StatusForbidden},
		{models.NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{models.NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}

func TestNewServerWithDeps_RequiresStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewServerWithDeps(testConfig(), db, nil, nil)
	assert.Error(t, err)

	srv, err := NewServerWithDeps(testConfig(), db, nil, storage.NewMemoryGateway())
	require.NoError(t, err)
	assert.Nil(t, srv.notifier)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.doJSON(t, http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["redis"])

	env.mr.Close()
	resp = env.doJSON(t, http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Checks["redis"])
}

func TestGetRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/api/", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var routes []RouteInfo
	decode(t, resp, &routes)
	require.NotEmpty(t, routes)
	assert.Equal(t, "/api/posts", routes[0].Endpoint)
	assert.Equal(t, http.MethodGet, routes[0].Method)
	for _, r := range routes {
		assert.NotEmpty(t, r.Description, r.Endpoint)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	resp := env.doJSON(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocket_RequiresAuthAndUpgrade(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")

	resp := env.doJSON(t, http.MethodGet, "/api/ws", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.doJSON(t, http.MethodGet, "/api/ws?token="+env.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	resp := env.doJSON(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}
