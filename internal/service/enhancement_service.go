package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/promptlab-api/internal/dto"
	"github.com/noah-isme/promptlab-api/internal/ratelimit"
	"github.com/noah-isme/promptlab-api/internal/rewrite"
)

// EnhancementService analyses a prompt and produces a rewrite.
type EnhancementService interface {
	Enhance(ctx context.Context, ownerID string, req dto.EnhanceRequest) (dto.EnhanceResponse, ratelimit.Decision, error)
}

type enhancementService struct {
	analyses  PromptAnalysisService
	rewriter  *rewrite.Rewriter
	limiter   *ratelimit.Limiter
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewEnhancementService wires the analysis service with a rewriter. limiter may be nil.
func NewEnhancementService(analyses PromptAnalysisService, rewriter *rewrite.Rewriter, limiter *ratelimit.Limiter, validate *validator.Validate, logger zerolog.Logger) EnhancementService {
	if validate == nil {
		validate = validator.New()
	}
	return &enhancementService{
		analyses:  analyses,
		rewriter:  rewriter,
		limiter:   limiter,
		validator: validate,
		logger:    logger.With().Str("component", "enhancement_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/promptlab-api/internal/service/enhancement"),
	}
}

func (s *enhancementService) Enhance(ctx context.Context, ownerID string, req dto.EnhanceRequest) (dto.EnhanceResponse, ratelimit.Decision, error) {
	ctx, span := s.tracer.Start(ctx, "enhancement.enhance")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.EnhanceResponse{}, ratelimit.Decision{}, err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return dto.EnhanceResponse{}, ratelimit.Decision{}, fmt.Errorf("%w: prompt must not be blank", ErrValidation)
	}

	decision, err := checkQuota(ctx, s.limiter, ownerID)
	if err != nil {
		return dto.EnhanceResponse{}, decision, err
	}

	analysis, err := s.analyses.Analyze(ctx, ownerID, dto.AnalyzeRequest{Prompt: req.Prompt})
	if err != nil {
		return dto.EnhanceResponse{}, decision, err
	}

	outcome := s.rewriter.WithModel(req.Model).Rewrite(ctx, req.Prompt, analysis.Result)
	span.SetAttributes(
		attribute.String("rewrite.source", string(outcome.Source)),
		attribute.Int("rewrite.score", outcome.Score),
	)
	s.logger.Debug().
		Str("source", string(outcome.Source)).
		Int("attempts", outcome.Attempts).
		Int("original_score", analysis.Score).
		Int("enhanced_score", outcome.Score).
		Msg("prompt enhanced")

	return dto.EnhanceResponse{
		Analysis:       analysis,
		EnhancedPrompt: outcome.Text,
		Source:         string(outcome.Source),
		Attempts:       outcome.Attempts,
		EnhancedScore:  outcome.Score,
		Improvement:    outcome.Score - analysis.Score,
	}, decision, nil
}
