package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/dto"
	"github.com/noah-isme/gema-play-api/internal/service"
	"github.com/noah-isme/gema-play-api/internal/utils"
)

// MissingLinkHandler serves the complete-the-missing-link exercise.
type MissingLinkHandler struct {
	service service.MissingLinkService
	timeout time.Duration
	logger  zerolog.Logger
}

// NewMissingLinkHandler constructs a missing-link handler.
func NewMissingLinkHandler(service service.MissingLinkService, timeout time.Duration, logger zerolog.Logger) *MissingLinkHandler {
	return &MissingLinkHandler{
		service: service,
		timeout: timeout,
		logger:  logger.With().Str("component", "missing_link_handler").Logger(),
	}
}

// Register wires missing-link routes.
func (h *MissingLinkHandler) Register(router fiber.Router) {
	router.Post("/generate", h.generate)
	router.Post("/evaluate", h.evaluate)
}

func (h *MissingLinkHandler) generate(c *fiber.Ctx) error {
	var payload dto.MissingLinkGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	response, err := h.service.Generate(ctx, payload)
	if err != nil {
		logger := requestLogger(h.logger, c).With().Str("concept_id", payload.ConceptID).Logger()
		return sendPlayError(c, &logger, err, "generate puzzle")
	}

	return utils.SendSuccess(c, "puzzle generated", response)
}

// evaluate grades locally; no collaborator call is made.
func (h *MissingLinkHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.MissingLinkEvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := requestContext(c, 0)
	defer cancel()

	response, err := h.service.Evaluate(ctx, payload)
	if err != nil {
		logger := requestLogger(h.logger, c).With().Str("session_id", payload.SessionID).Logger()
		return sendPlayError(c, &logger, err, "evaluate puzzle")
	}

	return utils.SendSuccess(c, "puzzle evaluated", response)
}
