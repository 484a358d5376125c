package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/dto"
	"github.com/noah-isme/gema-play-api/internal/service"
	"github.com/noah-isme/gema-play-api/internal/utils"
)

// TeachDialogueHandler serves the teach-the-system dialogue.
type TeachDialogueHandler struct {
	service service.TeachDialogueService
	timeout time.Duration
	logger  zerolog.Logger
}

// NewTeachDialogueHandler constructs a dialogue handler.
func NewTeachDialogueHandler(service service.TeachDialogueService, timeout time.Duration, logger zerolog.Logger) *TeachDialogueHandler {
	return &TeachDialogueHandler{
		service: service,
		timeout: timeout,
		logger:  logger.With().Str("component", "teach_dialogue_handler").Logger(),
	}
}

// Register wires dialogue routes.
func (h *TeachDialogueHandler) Register(router fiber.Router) {
	router.Post("/start-session", h.start)
	router.Post("/evaluate-response", h.evaluate)
	router.Get("/sessions/:id/history", h.history)
	router.Delete("/sessions/:id", h.end)
}

func (h *TeachDialogueHandler) start(c *fiber.Ctx) error {
	var payload dto.DialogueStartRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	response, err := h.service.Start(ctx, payload)
	if err != nil {
		logger := requestLogger(h.logger, c).With().Str("concept_id", payload.ConceptID).Logger()
		return sendPlayError(c, &logger, err, "start dialogue")
	}

	return utils.SendSuccess(c, "dialogue started", response)
}

func (h *TeachDialogueHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.DialogueEvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	response, err := h.service.Evaluate(ctx, payload)
	if err != nil {
		logger := requestLogger(h.logger, c).With().Str("session_id", payload.SessionID).Logger()
		return sendPlayError(c, &logger, err, "evaluate explanation")
	}

	return utils.SendSuccess(c, "explanation evaluated", response)
}

func (h *TeachDialogueHandler) history(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	response, err := h.service.History(c.UserContext(), id)
	if err != nil {
		logger := requestLogger(h.logger, c).With().Str("session_id", id).Logger()
		return sendPlayError(c, &logger, err, "load dialogue history")
	}

	return utils.SendSuccess(c, "dialogue history", response)
}

func (h *TeachDialogueHandler) end(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.End(c.UserContext(), id); err != nil {
		logger := requestLogger(h.logger, c).With().Str("session_id", id).Logger()
		return sendPlayError(c, &logger, err, "end dialogue")
	}

	return utils.SendSuccess(c, "dialogue ended", nil)
}
