package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/promptlab-api/internal/analyzer"
	"github.com/noah-isme/promptlab-api/internal/dto"
	"github.com/noah-isme/promptlab-api/internal/models"
	"github.com/noah-isme/promptlab-api/internal/observability"
	"github.com/noah-isme/promptlab-api/internal/repository"
)

const defaultHistoryPageSize = 20

// PromptAnalysisService scores prompts and keeps their history.
type PromptAnalysisService interface {
	Analyze(ctx context.Context, ownerID string, req dto.AnalyzeRequest) (dto.AnalysisResponse, error)
	History(ctx context.Context, ownerID string, query dto.HistoryQuery) (dto.AnalysisHistoryResponse, error)
}

type promptAnalysisService struct {
	analyzer  *analyzer.Analyzer
	repo      repository.AnalysisRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewPromptAnalysisService builds the analysis service. repo and cache are optional.
func NewPromptAnalysisService(repo repository.AnalysisRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) PromptAnalysisService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if validate == nil {
		validate = validator.New()
	}
	return &promptAnalysisService{
		analyzer:  analyzer.New(),
		repo:      repo,
		cache:     cache,
		cacheTTL:  ttl,
		validator: validate,
		logger:    logger.With().Str("component", "prompt_analysis_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/promptlab-api/internal/service/analysis"),
	}
}

func (s *promptAnalysisService) Analyze(ctx context.Context, ownerID string, req dto.AnalyzeRequest) (dto.AnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.analyze")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.AnalysisResponse{}, err
	}

	hash := promptHash(req.Prompt)
	span.SetAttributes(attribute.String("prompt.hash", hash))

	response := dto.AnalysisResponse{}
	if cached, ok := s.readCache(ctx, hash); ok {
		response.Result = cached
		response.Cached = true
	} else {
		response.Result = analyzer.Score(req.Prompt, s.analyzer.Analyze(req.Prompt))
		s.writeCache(ctx, hash, response.Result)
	}

	span.SetAttributes(
		attribute.Int("analysis.score", response.Score),
		attribute.String("analysis.grade", string(response.Grade)),
		attribute.Bool("analysis.cached", response.Cached),
	)
	observability.PromptAnalyses().WithLabelValues(string(response.Grade)).Inc()

	if s.repo != nil {
		referenceID, err := s.persist(ctx, ownerID, req.Prompt, hash, response.Result)
		if err != nil {
			// History is best effort.
			span.RecordError(err)
			s.logger.Warn().Err(err).Msg("failed to persist prompt analysis")
		} else {
			response.ReferenceID = referenceID
		}
	}

	return response, nil
}

func (s *promptAnalysisService) History(ctx context.Context, ownerID string, query dto.HistoryQuery) (dto.AnalysisHistoryResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.AnalysisHistoryResponse{}, err
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultHistoryPageSize
	}

	response := dto.AnalysisHistoryResponse{
		Items:    []dto.AnalysisHistoryItem{},
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if s.repo == nil {
		return response, nil
	}

	items, total, err := s.repo.ListByOwner(ctx, ownerID, repository.ListFilter{Page: query.Page, PageSize: query.PageSize})
	if err != nil {
		return dto.AnalysisHistoryResponse{}, fmt.Errorf("list analyses: %w", err)
	}
	for _, item := range items {
		historyItem, err := dto.NewAnalysisHistoryItem(item)
		if err != nil {
			s.logger.Warn().Err(err).Str("reference_id", item.ReferenceID).Msg("stored analysis is partially unreadable")
		}
		response.Items = append(response.Items, historyItem)
	}
	response.Total = total
	return response, nil
}

func (s *promptAnalysisService) readCache(ctx context.Context, hash string) (analyzer.Result, bool) {
	if s.cache == nil {
		return analyzer.Result{}, false
	}

	cached, err := s.cache.Get(ctx, analysisCacheKey(hash)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read analysis cache")
		}
		observability.AnalysisCache().WithLabelValues("miss").Inc()
		return analyzer.Result{}, false
	}

	var result analyzer.Result
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		s.logger.Warn().Err(err).Msg("discarding corrupt analysis cache entry")
		observability.AnalysisCache().WithLabelValues("miss").Inc()
		return analyzer.Result{}, false
	}

	observability.AnalysisCache().WithLabelValues("hit").Inc()
	return result, true
}

func (s *promptAnalysisService) writeCache(ctx context.Context, hash string, result analyzer.Result) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, analysisCacheKey(hash), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store analysis cache")
	}
}

func (s *promptAnalysisService) persist(ctx context.Context, ownerID, prompt, hash string, result analyzer.Result) (string, error) {
	findings, err := json.Marshal(result.Findings)
	if err != nil {
		return "", err
	}
	issues, err := json.Marshal(result.Issues)
	if err != nil {
		return "", err
	}

	record := models.PromptAnalysis{
		ReferenceID: uuid.NewString(),
		OwnerID:     ownerID,
		Prompt:      prompt,
		PromptHash:  hash,
		Score:       result.Score,
		Grade:       string(result.Grade),
		Findings:    datatypes.JSON(findings),
		Issues:      datatypes.JSON(issues),
		Rewritten:   result.Rewritten,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return "", err
	}
	return record.ReferenceID, nil
}

func promptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

func analysisCacheKey(hash string) string {
	return "analysis:" + hash
}
