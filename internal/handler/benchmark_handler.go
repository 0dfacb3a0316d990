package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/promptlab-api/internal/dto"
	"github.com/noah-isme/promptlab-api/internal/middleware"
	"github.com/noah-isme/promptlab-api/internal/service"
	"github.com/noah-isme/promptlab-api/internal/utils"
)

// BenchmarkHandler serves dual-path benchmark runs.
type BenchmarkHandler struct {
	service service.BenchmarkService
	logger  zerolog.Logger
}

// NewBenchmarkHandler constructs a benchmark handler.
func NewBenchmarkHandler(service service.BenchmarkService, logger zerolog.Logger) *BenchmarkHandler {
	return &BenchmarkHandler{
		service: service,
		logger:  logger.With().Str("component", "benchmark_handler").Logger(),
	}
}

// Register wires benchmark routes.
func (h *BenchmarkHandler) Register(router fiber.Router) {
	router.Post("", h.run)
	router.Get("", middleware.RequireUser(), h.history)
	router.Get("/:reference", h.get)
}

func (h *BenchmarkHandler) run(c *fiber.Ctx) error {
	var payload dto.BenchmarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, decision, err := h.service.Run(c.UserContext(), middleware.CallerIdentity(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to run benchmark")
	}

	middleware.SetRateLimitHeaders(c, decision)
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "benchmark completed", response)
}

func (h *BenchmarkHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(c.UserContext(), middleware.CallerIdentity(c), c.Params("reference"))
	if err != nil {
		return handleError(c, h.logger, err, "failed to load benchmark")
	}

	return utils.SendSuccess(c, "benchmark retrieved", response)
}

func (h *BenchmarkHandler) history(c *fiber.Ctx) error {
	var query dto.HistoryQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.History(c.UserContext(), middleware.CallerIdentity(c), query)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load benchmark history")
	}

	return utils.SendSuccess(c, "benchmark history retrieved", response)
}
