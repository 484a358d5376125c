package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-play-api/internal/config"
	"github.com/noah-isme/gema-play-api/internal/handler"
	"github.com/noah-isme/gema-play-api/internal/middleware"
	"github.com/noah-isme/gema-play-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	FindMistakeHandler   *handler.FindMistakeHandler
	MissingLinkHandler   *handler.MissingLinkHandler
	TeachDialogueHandler *handler.TeachDialogueHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	play := api.Group("/play", middleware.RateLimit("play", cfg.RateLimitMax, cfg.RateLimitWindow))

	if deps.FindMistakeHandler != nil {
		deps.FindMistakeHandler.Register(play.Group("/find-mistake"))
	}
	if deps.MissingLinkHandler != nil {
		deps.MissingLinkHandler.Register(play.Group("/complete-missing-link"))
	}
	if deps.TeachDialogueHandler != nil {
		deps.TeachDialogueHandler.Register(play.Group("/teach-ai"))
	}
}
