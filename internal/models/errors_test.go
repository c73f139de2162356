package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldErrors_SortedMessage(t *testing.T) {
	err := NewFieldErrors(map[string]string{
		"username": "already taken",
		"email":    "already registered",
	})

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "email: already registered; username: already taken", err.Message)
	assert.Len(t, err.Fields, 2)
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("load post: %w", NewNotFoundError("Post", 4))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(NewValidationError("bad")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		err         error
		wantCode    string
		wantFields  bool
		wantDetails string
	}{
		{"field validation", fiber.StatusBadRequest, NewFieldError("password", "Password fields didn't match."), CodeValidation, true, ""},
		{"not found", fiber.StatusNotFound, NewNotFoundError("Comment", 9), CodeNotFound, false, ""},
		{"internal hides cause", fiber.StatusInternalServerError, NewInternalError(errors.New("dial tcp")), CodeInternal, false, ""},
		{"plain error", fiber.StatusInternalServerError, errors.New("boom"), "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return RespondWithError(c, tt.status, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.wantCode, out.Code)
			assert.Equal(t, tt.wantFields, len(out.Fields) > 0)
			assert.Equal(t, tt.wantDetails, out.Details)
			assert.NotEmpty(t, out.Error)
		})
	}
}
