package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/domain"
)

// Error codes returned alongside the message.
const (
	CodeInvalidArgument = "invalid-argument"
	CodeUnauthenticated = "unauthenticated"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ErrorHandler maps service errors to HTTP responses. Processor messages are
// logged by the service and replaced with a generic text here.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := toResponse(err)

		if status >= fiber.StatusInternalServerError {
			log.Error("Request failed",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("request_id", RequestID(c)),
			)
		}

		return c.Status(status).JSON(body)
	}
}

func toResponse(err error) (int, ErrorResponse) {
	var (
		ve       *domain.ValidationError
		ue       *domain.UpstreamError
		fiberErr *fiber.Error
	)

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ErrorResponse{Error: ve.Error(), Code: CodeInvalidArgument}
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Code: CodeUnauthenticated}
	case errors.As(err, &ue):
		if ue.Kind == domain.UpstreamUnavailable {
			return fiber.StatusServiceUnavailable, ErrorResponse{Error: "payment processor unavailable", Code: CodeUnavailable}
		}
		return fiber.StatusInternalServerError, ErrorResponse{Error: "payment processing failed", Code: CodeInternal}
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse{Error: fiberErr.Message}
	default:
		return fiber.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal}
	}
}
