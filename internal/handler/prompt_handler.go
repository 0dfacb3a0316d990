package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/promptlab-api/internal/dto"
	"github.com/noah-isme/promptlab-api/internal/middleware"
	"github.com/noah-isme/promptlab-api/internal/ratelimit"
	"github.com/noah-isme/promptlab-api/internal/service"
	"github.com/noah-isme/promptlab-api/internal/utils"
)

// PromptHandler serves prompt analysis and enhancement.
type PromptHandler struct {
	analyses       service.PromptAnalysisService
	enhancements   service.EnhancementService
	analyzeLimiter *ratelimit.Limiter
	logger         zerolog.Logger
}

// NewPromptHandler constructs a prompt handler. analyzeLimiter may be nil.
func NewPromptHandler(analyses service.PromptAnalysisService, enhancements service.EnhancementService, analyzeLimiter *ratelimit.Limiter, logger zerolog.Logger) *PromptHandler {
	return &PromptHandler{
		analyses:       analyses,
		enhancements:   enhancements,
		analyzeLimiter: analyzeLimiter,
		logger:         logger.With().Str("component", "prompt_handler").Logger(),
	}
}

// Register wires prompt routes.
func (h *PromptHandler) Register(router fiber.Router) {
	router.Post("/analyze", middleware.RateLimit(h.analyzeLimiter), h.analyze)
	router.Post("/enhance", h.enhance)
	router.Get("/history", middleware.RequireUser(), h.history)
}

func (h *PromptHandler) analyze(c *fiber.Ctx) error {
	var payload dto.AnalyzeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.analyses.Analyze(c.UserContext(), middleware.CallerIdentity(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to analyze prompt")
	}

	return utils.SendSuccess(c, "prompt analyzed", response)
}

func (h *PromptHandler) enhance(c *fiber.Ctx) error {
	var payload dto.EnhanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, decision, err := h.enhancements.Enhance(c.UserContext(), middleware.CallerIdentity(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to enhance prompt")
	}

	middleware.SetRateLimitHeaders(c, decision)
	return utils.SendSuccess(c, "prompt enhanced", response)
}

func (h *PromptHandler) history(c *fiber.Ctx) error {
	var query dto.HistoryQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.analyses.History(c.UserContext(), middleware.CallerIdentity(c), query)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load analysis history")
	}

	return utils.SendSuccess(c, "analysis history retrieved", response)
}
