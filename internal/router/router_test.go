package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-play-api/internal/config"
	"github.com/noah-isme/gema-play-api/internal/handler"
	"github.com/noah-isme/gema-play-api/internal/router"
	"github.com/noah-isme/gema-play-api/internal/service"
	"github.com/noah-isme/gema-play-api/internal/session"
	"github.com/noah-isme/gema-play-api/pkg/ai"
)

func newApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	logger := zerolog.New(io.Discard)
	deps := service.PlayDependencies{
		Store:    session.NewMemoryStore(session.Config{TTL: time.Minute}, logger),
		Provider: ai.NewMockProvider(),
		Logger:   logger,
	}

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		FindMistakeHandler:   handler.NewFindMistakeHandler(service.NewFindMistakeService(deps), time.Second, logger),
		MissingLinkHandler:   handler.NewMissingLinkHandler(service.NewMissingLinkService(deps), time.Second, logger),
		TeachDialogueHandler: handler.NewTeachDialogueHandler(service.NewTeachDialogueService(deps), time.Second, logger),
	})
	return app
}

func TestHealthAndMetrics(t *testing.T) {
	app := newApp(t, config.Config{AppName: "GEMA Play API", AppEnv: "test"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "GEMA Play API", resp.Header.Get("X-Application"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "go_goroutines")
}

func TestPlayRoutesRegistered(t *testing.T) {
	app := newApp(t, config.Config{AppName: "GEMA Play API"})

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/play/find-mistake/evaluate"},
		{http.MethodPost, "/api/v1/play/complete-missing-link/evaluate"},
		{http.MethodGet, "/api/v1/play/teach-ai/sessions/missing/history"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"session_id": "missing"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode, tc.path)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/play/teach-ai/sessions/missing", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPlayRoutesRateLimited(t *testing.T) {
	app := newApp(t, config.Config{RateLimitMax: 1, RateLimitWindow: time.Minute})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/play/teach-ai/sessions/a", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/play/teach-ai/sessions/b", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
