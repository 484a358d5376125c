package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-play-api/internal/utils"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
	Error   *utils.APIError   `json:"error"`
}

func perform(t *testing.T, app *fiber.App) (int, envelope, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	encoded, err := json.Marshal(raw)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(encoded, &env))
	return resp.StatusCode, env, raw
}

func TestSendSuccessDefaults(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "", map[string]string{"session_id": "abc"})
	})

	status, env, _ := perform(t, app)
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, env.Success)
	require.Equal(t, "success", env.Message)
	require.Equal(t, "abc", env.Data["session_id"])
	require.Nil(t, env.Error)
}

func TestSendSuccessWithStatus(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "created", nil)
	})

	status, env, raw := perform(t, app)
	require.Equal(t, fiber.StatusCreated, status)
	require.Equal(t, "created", env.Message)
	require.NotContains(t, raw, "data")
}

func TestSendErrorOmitsData(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "invalid or expired session")
	})

	status, env, raw := perform(t, app)
	require.Equal(t, fiber.StatusNotFound, status)
	require.False(t, env.Success)
	require.Equal(t, "invalid or expired session", env.Message)
	require.NotContains(t, raw, "data")
	require.Equal(t, utils.CodeSessionGone, env.Error.Code)
	require.False(t, env.Error.Retryable)
}

func TestSendErrorCodeRetryable(t *testing.T) {
	cases := []struct {
		status    int
		code      string
		retryable bool
	}{
		{fiber.StatusBadRequest, utils.CodeInvalidPayload, false},
		{fiber.StatusTooManyRequests, utils.CodeRateLimited, true},
		{fiber.StatusBadGateway, utils.CodeCollaboratorOutput, true},
		{fiber.StatusServiceUnavailable, utils.CodeCollaboratorDown, true},
		{fiber.StatusInternalServerError, utils.CodeInternal, false},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			return utils.SendError(c, tc.status, "")
		})

		status, env, _ := perform(t, app)
		require.Equal(t, tc.status, status)
		require.Equal(t, "error", env.Message)
		require.Equal(t, tc.code, env.Error.Code)
		require.Equal(t, tc.retryable, env.Error.Retryable)
	}
}
