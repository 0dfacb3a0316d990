package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/promptlab-api/internal/config"
	"github.com/noah-isme/promptlab-api/internal/utils"
)

// HealthComponents reports which optional backends are wired.
type HealthComponents struct {
	Database bool `json:"database"`
	Redis    bool `json:"redis"`
	NATS     bool `json:"nats"`
	Invoker  bool `json:"invoker"`
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string           `json:"status"`
	Timestamp   time.Time        `json:"timestamp"`
	Service     string           `json:"service"`
	Environment string           `json:"environment"`
	Provider    string           `json:"provider"`
	Components  HealthComponents `json:"components"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config, components HealthComponents) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Provider:    cfg.AIProvider,
			Components:  components,
		}
		if !components.Invoker {
			payload.Status = "degraded"
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
