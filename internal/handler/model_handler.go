package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/promptlab-api/internal/adapter"
	"github.com/noah-isme/promptlab-api/internal/utils"
)

// ModelHandler exposes the adapter registry.
type ModelHandler struct {
	registry *adapter.Registry
}

// NewModelHandler constructs a model handler.
func NewModelHandler(registry *adapter.Registry) *ModelHandler {
	return &ModelHandler{registry: registry}
}

// Register wires model routes.
func (h *ModelHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.describe)
}

func (h *ModelHandler) list(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "models retrieved", h.registry.List())
}

func (h *ModelHandler) describe(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "model retrieved", h.registry.Describe(c.Params("id")))
}
