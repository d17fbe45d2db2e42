package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"smartq/internal/domain"
	"smartq/internal/logger"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler is a centralized error handling middleware
func ErrorHandler(l *zap.Logger) fiber.ErrorHandler {
	log := logger.OrNop(l)
	return func(c *fiber.Ctx, err error) error {
		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		domainErr := domain.AsDomainError(err)
		statusCode := mapDomainErrorToHTTPStatus(domainErr)

		fields := []zap.Field{
			zap.String("path", c.Path()),
			zap.String("code", string(domainErr.Code)),
			zap.Int("status", statusCode),
			zap.Error(err),
		}
		if rid, ok := c.Locals(RequestIDKey).(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if statusCode >= http.StatusInternalServerError {
			log.Error("Request failed", fields...)
		} else {
			log.Warn("Request rejected", fields...)
		}

		response := ErrorResponse{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Status:  statusCode,
		}
		if len(domainErr.Context) > 0 {
			response.Details = domainErr.Context
		}
		return c.Status(statusCode).JSON(response)
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeInvalidInput:
		return http.StatusBadRequest
	case domain.CodeInvalidLLMOutput, domain.CodeLLMProtocol:
		return http.StatusBadGateway
	case domain.CodeLLMTimeout:
		return http.StatusGatewayTimeout
	case domain.CodeLLMUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
