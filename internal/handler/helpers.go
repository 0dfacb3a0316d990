package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/promptlab-api/internal/middleware"
	"github.com/noah-isme/promptlab-api/internal/service"
	"github.com/noah-isme/promptlab-api/internal/utils"
)

// handleError maps service errors onto HTTP responses.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var validationErrors validator.ValidationErrors
	var limited *service.RateLimitError

	switch {
	case errors.As(err, &validationErrors):
		message, details := describeValidation(validationErrors)
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, message, details)
	case errors.Is(err, service.ErrValidation):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &limited):
		middleware.SetRateLimitHeaders(c, limited.Decision)
		return utils.SendError(c, fiber.StatusTooManyRequests, service.ErrRateLimited.Error())
	case errors.Is(err, service.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrInvokerUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "no model provider is configured")
	case errors.Is(err, service.ErrBenchmarkNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger := middleware.RequestLogger(logger, c)
		requestLogger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func describeValidation(errs validator.ValidationErrors) (string, map[string]string) {
	parts := make([]string, 0, len(errs))
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		field := lowerFirst(fieldErr.Field())
		details[field] = fieldErr.Tag()
		switch fieldErr.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; "), details
}

func lowerFirst(value string) string {
	if value == "" {
		return value
	}
	return strings.ToLower(value[:1]) + value[1:]
}
