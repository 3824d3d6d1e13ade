package middleware

import (
	"errors"
	"net/http"

	"studykit/internal/domain"
	"studykit/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every failed request. The UI renders
// Message inline next to the control that triggered it.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeInvalidInput: http.StatusBadRequest,
	domain.CodeValidation:   http.StatusBadRequest,
	domain.CodeNotFound:     http.StatusNotFound,
	domain.CodeInvalidState: http.StatusConflict,
}

// ErrorHandler renders domain, fiber and unknown errors as ErrorResponse.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get().With(
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			status := statusForDomainError(domainErr)
			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", status),
			}
			if status >= http.StatusInternalServerError {
				log.Error("Request failed", append(fields, zap.Error(domainErr.Cause))...)
			} else {
				log.Warn("Request rejected", fields...)
			}
			resp := ErrorResponse{Code: string(domainErr.Code), Message: domainErr.Message, Status: status}
			if len(domainErr.Context) > 0 {
				resp.Details = domainErr.Context
			}
			return c.Status(status).JSON(resp)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("HTTP error", zap.Int("status", fiberErr.Code), zap.String("message", fiberErr.Message))
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		log.Error("Unhandled error", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}

func statusForDomainError(err *domain.DomainError) int {
	if status, ok := statusByCode[err.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
