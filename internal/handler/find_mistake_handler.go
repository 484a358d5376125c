package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/dto"
	"github.com/noah-isme/gema-play-api/internal/service"
	"github.com/noah-isme/gema-play-api/internal/utils"
)

// FindMistakeHandler serves the find-the-mistake exercise.
type FindMistakeHandler struct {
	service service.FindMistakeService
	timeout time.Duration
	logger  zerolog.Logger
}

// NewFindMistakeHandler constructs a find-the-mistake handler.
func NewFindMistakeHandler(service service.FindMistakeService, timeout time.Duration, logger zerolog.Logger) *FindMistakeHandler {
	return &FindMistakeHandler{
		service: service,
		timeout: timeout,
		logger:  logger.With().Str("component", "find_mistake_handler").Logger(),
	}
}

// Register wires find-the-mistake routes.
func (h *FindMistakeHandler) Register(router fiber.Router) {
	router.Post("/generate", h.generate)
	router.Post("/evaluate", h.evaluate)
}

func (h *FindMistakeHandler) generate(c *fiber.Ctx) error {
	var payload dto.FindMistakeGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	response, err := h.service.Generate(ctx, payload)
	if err != nil {
		logger := requestLogger(h.logger, c).With().Str("concept_id", payload.ConceptID).Logger()
		return sendPlayError(c, &logger, err, "generate exercise")
	}

	return utils.SendSuccess(c, "exercise generated", response)
}

func (h *FindMistakeHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.FindMistakeEvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	response, err := h.service.Evaluate(ctx, payload)
	if err != nil {
		logger := requestLogger(h.logger, c).With().Str("session_id", payload.SessionID).Logger()
		return sendPlayError(c, &logger, err, "evaluate answer")
	}

	return utils.SendSuccess(c, "answer evaluated", response)
}
