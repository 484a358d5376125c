package utils

import "github.com/gofiber/fiber/v2"

// Error codes let clients tell retryable collaborator failures from
// permanent ones without parsing messages.
const (
	CodeInvalidPayload     = "invalid_payload"
	CodeSessionGone        = "session_gone"
	CodeRateLimited        = "rate_limited"
	CodeCollaboratorDown   = "collaborator_unavailable"
	CodeCollaboratorOutput = "collaborator_output_rejected"
	CodeInternal           = "internal_error"
)

// APIError describes a failed request.
type APIError struct {
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Error   *APIError   `json:"error,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code. The
// error code is derived from the status.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendErrorCode(c, status, codeForStatus(status), message)
}

// SendErrorCode sends an error JSON response with an explicit error code.
// Gateway and availability failures are marked retryable.
func SendErrorCode(c *fiber.Ctx, status int, code, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:      code,
			Retryable: status == fiber.StatusServiceUnavailable || status == fiber.StatusTooManyRequests || status == fiber.StatusBadGateway,
		},
	})
}

func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return CodeSessionGone
	case status == fiber.StatusTooManyRequests:
		return CodeRateLimited
	case status == fiber.StatusServiceUnavailable:
		return CodeCollaboratorDown
	case status == fiber.StatusBadGateway:
		return CodeCollaboratorOutput
	case status >= fiber.StatusBadRequest && status < fiber.StatusInternalServerError:
		return CodeInvalidPayload
	default:
		return CodeInternal
	}
}
