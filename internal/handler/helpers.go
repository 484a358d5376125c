package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/contract"
	"github.com/noah-isme/gema-play-api/internal/middleware"
	"github.com/noah-isme/gema-play-api/internal/service"
	"github.com/noah-isme/gema-play-api/internal/utils"
	"github.com/noah-isme/gema-play-api/pkg/ai"
)

const sessionGoneMessage = "invalid or expired session"

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// requestContext carries the correlation id and bounds the request by the
// collaborator timeout.
func requestContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := middleware.ContextWithCorrelation(c.UserContext(), middleware.GetCorrelationID(c))
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// sendPlayError maps play service failures onto HTTP statuses.
func sendPlayError(c *fiber.Ctx, logger *zerolog.Logger, err error, action string) error {
	var providerErr *ai.ProviderError

	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrVariantMismatch):
		return utils.SendError(c, fiber.StatusNotFound, sessionGoneMessage)
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Msg(action + " timed out")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "collaborator timed out, please retry")
	case errors.As(err, &providerErr):
		logger.Warn().Err(err).Str("provider", providerErr.Provider).Msg(action + " failed upstream")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "collaborator unavailable, please retry")
	case errors.Is(err, contract.ErrContractViolation), errors.Is(err, contract.ErrIncompleteArtifact):
		logger.Warn().Err(err).Msg(action + " rejected collaborator output")
		return utils.SendError(c, fiber.StatusBadGateway, "collaborator returned an unusable response")
	case errors.Is(err, service.ErrGenerationFailed), errors.Is(err, service.ErrEvaluationFailed):
		logger.Error().Err(err).Msg(action + " failed")
		return utils.SendError(c, fiber.StatusBadGateway, "collaborator request failed")
	default:
		logger.Error().Err(err).Msg(action + " failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
