package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/promptlab-api/internal/adapter"
	"github.com/noah-isme/promptlab-api/internal/benchmark"
	"github.com/noah-isme/promptlab-api/internal/dto"
	"github.com/noah-isme/promptlab-api/internal/models"
	"github.com/noah-isme/promptlab-api/internal/observability"
	"github.com/noah-isme/promptlab-api/internal/ratelimit"
	"github.com/noah-isme/promptlab-api/internal/repository"
)

// BenchmarkService runs dual-path benchmarks and stores their verdicts.
type BenchmarkService interface {
	Run(ctx context.Context, ownerID string, req dto.BenchmarkRequest) (dto.BenchmarkResponse, ratelimit.Decision, error)
	Get(ctx context.Context, ownerID, referenceID string) (dto.BenchmarkResponse, error)
	History(ctx context.Context, ownerID string, query dto.HistoryQuery) (dto.BenchmarkHistoryResponse, error)
}

// BenchmarkServiceConfig groups the optional collaborators of the benchmark service.
type BenchmarkServiceConfig struct {
	Executor           *benchmark.Executor
	Registry           *adapter.Registry
	Repository         repository.BenchmarkRepository
	Limiter            *ratelimit.Limiter
	Events             BenchmarkEventPublisher
	Validator          *validator.Validate
	ExposeInstructions bool
}

type benchmarkService struct {
	executor *benchmark.Executor
	registry *adapter.Registry
	repo     repository.BenchmarkRepository
	limiter  *ratelimit.Limiter
	events   BenchmarkEventPublisher
	validate *validator.Validate
	expose   bool
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewBenchmarkService constructs the benchmark workflow.
func NewBenchmarkService(cfg BenchmarkServiceConfig, logger zerolog.Logger) BenchmarkService {
	if cfg.Registry == nil {
		cfg.Registry = adapter.DefaultRegistry()
	}
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}

	return &benchmarkService{
		executor: cfg.Executor,
		registry: cfg.Registry,
		repo:     cfg.Repository,
		limiter:  cfg.Limiter,
		events:   cfg.Events,
		validate: cfg.Validator,
		expose:   cfg.ExposeInstructions,
		logger:   logger.With().Str("component", "benchmark_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/promptlab-api/internal/service/benchmark"),
		now:      time.Now,
	}
}

// InvocationObserver records per-path executor results as Prometheus metrics.
func InvocationObserver() benchmark.Observer {
	return func(path benchmark.Path, failed bool, duration time.Duration) {
		status := "success"
		if failed {
			status = "failure"
		}
		observability.ModelInvocations().WithLabelValues(string(path), status).Inc()
		observability.ModelInvocationLatency().WithLabelValues(string(path)).Observe(duration.Seconds())
	}
}

func (s *benchmarkService) Run(ctx context.Context, ownerID string, req dto.BenchmarkRequest) (dto.BenchmarkResponse, ratelimit.Decision, error) {
	ctx, span := s.tracer.Start(ctx, "benchmark.service.run", trace.WithAttributes(
		attribute.String("model", req.ModelID),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.BenchmarkResponse{}, ratelimit.Decision{}, err
	}
	if strings.TrimSpace(req.OriginalText) == "" || strings.TrimSpace(req.EnhancedText) == "" {
		return dto.BenchmarkResponse{}, ratelimit.Decision{}, fmt.Errorf("%w: originalText and enhancedText must not be blank", ErrValidation)
	}
	if s.executor == nil || !s.executor.Available() {
		span.SetStatus(codes.Error, "invoker unavailable")
		return dto.BenchmarkResponse{}, ratelimit.Decision{}, ErrInvokerUnavailable
	}

	decision, err := checkQuota(ctx, s.limiter, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, "rate limited")
		return dto.BenchmarkResponse{}, decision, err
	}

	pair := s.executor.Run(ctx, req.OriginalText, req.EnhancedText, req.ModelID)
	verdict := benchmark.Validate(pair.Original, pair.Enhanced)

	verdictLabel := "accepted"
	if !verdict.Accepted {
		verdictLabel = "rejected"
		s.logger.Warn().
			Str("model", req.ModelID).
			Strs("reasons", verdict.Reasons).
			Int("criteria_met", verdict.Criteria.Met).
			Msg("enhancement did not produce a measurable improvement")
	}
	observability.BenchmarkRuns().WithLabelValues(verdictLabel).Inc()
	span.SetAttributes(attribute.Bool("verdict.accepted", verdict.Accepted))

	response := dto.BenchmarkResponse{
		ReferenceID: uuid.NewString(),
		ModelID:     req.ModelID,
		Model:       s.registry.Describe(req.ModelID),
		OutputA:     dto.NewOutcomeResponse(pair.Original, s.expose),
		OutputB:     dto.NewOutcomeResponse(pair.Enhanced, s.expose),
		Verdict:     verdict,
		CreatedAt:   s.now().UTC(),
	}

	if s.repo != nil {
		if err := s.persist(ctx, ownerID, req, pair, response); err != nil {
			span.RecordError(err)
			s.logger.Warn().Err(err).Str("reference_id", response.ReferenceID).Msg("failed to persist benchmark run")
		}
	}

	if s.events != nil {
		s.events.PublishCompleted(ctx, BenchmarkCompletedEvent{
			ReferenceID:     response.ReferenceID,
			OwnerID:         ownerID,
			ModelID:         req.ModelID,
			Accepted:        verdict.Accepted,
			Reasons:         verdict.Reasons,
			OriginalMetrics: pair.Original.Metrics,
			EnhancedMetrics: pair.Enhanced.Metrics,
			OriginalFailed:  pair.Original.Failed,
			EnhancedFailed:  pair.Enhanced.Failed,
			CompletedAt:     response.CreatedAt,
		})
	}

	return response, decision, nil
}

// Get loads a stored run. Runs owned by another caller are reported as not found.
func (s *benchmarkService) Get(ctx context.Context, ownerID, referenceID string) (dto.BenchmarkResponse, error) {
	referenceID = strings.TrimSpace(referenceID)
	if s.repo == nil || referenceID == "" || ownerID == "" {
		return dto.BenchmarkResponse{}, ErrBenchmarkNotFound
	}

	run, err := s.repo.GetByReference(ctx, ownerID, referenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BenchmarkResponse{}, ErrBenchmarkNotFound
		}
		return dto.BenchmarkResponse{}, fmt.Errorf("load benchmark %s: %w", referenceID, err)
	}

	response, err := dto.NewBenchmarkResponseFromModel(run, s.registry.Describe(run.ModelID), s.expose)
	if err != nil {
		s.logger.Warn().Err(err).Str("reference_id", referenceID).Msg("stored benchmark run is partially unreadable")
	}
	return response, nil
}

func (s *benchmarkService) History(ctx context.Context, ownerID string, query dto.HistoryQuery) (dto.BenchmarkHistoryResponse, error) {
	if err := s.validate.Struct(query); err != nil {
		return dto.BenchmarkHistoryResponse{}, err
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultHistoryPageSize
	}

	response := dto.BenchmarkHistoryResponse{
		Items:    []dto.BenchmarkHistoryItem{},
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if s.repo == nil {
		return response, nil
	}

	runs, total, err := s.repo.ListByOwner(ctx, ownerID, repository.ListFilter{Page: query.Page, PageSize: query.PageSize})
	if err != nil {
		return dto.BenchmarkHistoryResponse{}, fmt.Errorf("list benchmarks: %w", err)
	}
	for _, run := range runs {
		item, err := dto.NewBenchmarkHistoryItem(run)
		if err != nil {
			s.logger.Warn().Err(err).Str("reference_id", run.ReferenceID).Msg("stored benchmark run is partially unreadable")
		}
		response.Items = append(response.Items, item)
	}
	response.Total = total
	return response, nil
}

func (s *benchmarkService) persist(ctx context.Context, ownerID string, req dto.BenchmarkRequest, pair benchmark.Pair, response dto.BenchmarkResponse) error {
	// Stored outcomes always keep the instruction text; redaction happens on read.
	original, err := json.Marshal(dto.NewOutcomeResponse(pair.Original, true))
	if err != nil {
		return err
	}
	enhanced, err := json.Marshal(dto.NewOutcomeResponse(pair.Enhanced, true))
	if err != nil {
		return err
	}
	reasons, err := json.Marshal(response.Verdict.Reasons)
	if err != nil {
		return err
	}
	criteria, err := json.Marshal(response.Verdict.Criteria)
	if err != nil {
		return err
	}

	run := models.BenchmarkRun{
		ReferenceID:     response.ReferenceID,
		OwnerID:         ownerID,
		ModelID:         req.ModelID,
		OriginalPrompt:  req.OriginalText,
		EnhancedPrompt:  req.EnhancedText,
		OriginalOutput:  pair.Original.Text,
		EnhancedOutput:  pair.Enhanced.Text,
		OriginalFailed:  pair.Original.Failed,
		EnhancedFailed:  pair.Enhanced.Failed,
		OriginalOutcome: datatypes.JSON(original),
		EnhancedOutcome: datatypes.JSON(enhanced),
		Accepted:        response.Verdict.Accepted,
		Reasons:         datatypes.JSON(reasons),
		Criteria:        datatypes.JSON(criteria),
		CreatedAt:       response.CreatedAt,
	}
	return s.repo.Create(ctx, &run)
}
