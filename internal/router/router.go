package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/promptlab-api/internal/config"
	"github.com/noah-isme/promptlab-api/internal/handler"
	"github.com/noah-isme/promptlab-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PromptHandler    *handler.PromptHandler
	BenchmarkHandler *handler.BenchmarkHandler
	ModelHandler     *handler.ModelHandler
	Health           handler.HealthComponents
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Health))

	if deps.PromptHandler != nil {
		deps.PromptHandler.Register(api.Group("/prompts"))
	}
	if deps.BenchmarkHandler != nil {
		deps.BenchmarkHandler.Register(api.Group("/benchmarks"))
	}
	if deps.ModelHandler != nil {
		deps.ModelHandler.Register(api.Group("/models"))
	}
}
