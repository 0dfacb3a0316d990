package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/promptlab-api/internal/adapter"
	"github.com/noah-isme/promptlab-api/internal/benchmark"
	"github.com/noah-isme/promptlab-api/internal/models"
)

// BenchmarkRequest starts a dual-path benchmark.
type BenchmarkRequest struct {
	OriginalText string `json:"originalText" validate:"required,max=20000"`
	EnhancedText string `json:"enhancedText" validate:"required,max=20000"`
	ModelID      string `json:"modelId" validate:"required,max=128"`
}

// AppliedProfileResponse describes the sampling parameters a path ran with.
type AppliedProfileResponse struct {
	SystemInstructions    *string `json:"systemInstructions,omitempty"`
	HasSystemInstructions bool    `json:"hasSystemInstructions"`
	Temperature           float64 `json:"temperature"`
	TopP                  float64 `json:"topP"`
	MaxOutputTokens       int     `json:"maxOutputTokens"`
}

// OutcomeResponse is one benchmark path as returned to clients.
type OutcomeResponse struct {
	Text           string                 `json:"text"`
	PathKind       string                 `json:"pathKind"`
	AppliedProfile AppliedProfileResponse `json:"appliedProfile"`
	Metrics        benchmark.Metrics      `json:"metrics"`
	Failed         bool                   `json:"failed"`
	Error          string                 `json:"error,omitempty"`
	DurationMs     int64                  `json:"durationMs"`
}

// NewOutcomeResponse converts an executor outcome. Instruction text is kept
// only when expose is set.
func NewOutcomeResponse(outcome benchmark.Outcome, expose bool) OutcomeResponse {
	response := OutcomeResponse{
		Text:     outcome.Text,
		PathKind: string(outcome.Path),
		AppliedProfile: AppliedProfileResponse{
			SystemInstructions:    outcome.Profile.SystemInstructions,
			HasSystemInstructions: outcome.Profile.SystemInstructions != nil,
			Temperature:           outcome.Profile.Temperature,
			TopP:                  outcome.Profile.TopP,
			MaxOutputTokens:       outcome.Profile.MaxOutputTokens,
		},
		Metrics:    outcome.Metrics,
		Failed:     outcome.Failed,
		Error:      outcome.Error,
		DurationMs: outcome.Duration.Milliseconds(),
	}
	return response.Redacted(expose)
}

// Redacted drops the instruction text unless expose is set.
func (o OutcomeResponse) Redacted(expose bool) OutcomeResponse {
	if !expose {
		o.AppliedProfile.SystemInstructions = nil
	}
	return o
}

// BenchmarkResponse is the result of a benchmark run.
type BenchmarkResponse struct {
	ReferenceID string            `json:"referenceId"`
	ModelID     string            `json:"modelId"`
	Model       adapter.Summary   `json:"model"`
	OutputA     OutcomeResponse   `json:"outputA"`
	OutputB     OutcomeResponse   `json:"outputB"`
	Verdict     benchmark.Verdict `json:"verdict"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// NewBenchmarkResponseFromModel rebuilds a response from a stored run. Fields
// whose stored JSON cannot be decoded keep their zero value and the decode
// errors are returned joined.
func NewBenchmarkResponseFromModel(run models.BenchmarkRun, summary adapter.Summary, expose bool) (BenchmarkResponse, error) {
	response := BenchmarkResponse{
		ReferenceID: run.ReferenceID,
		ModelID:     run.ModelID,
		Model:       summary,
		Verdict:     benchmark.Verdict{Accepted: run.Accepted},
		CreatedAt:   run.CreatedAt,
	}

	outputA, errA := storedOutcome(run.OriginalOutcome, run.OriginalOutput, benchmark.PathOriginal, run.OriginalFailed)
	outputB, errB := storedOutcome(run.EnhancedOutcome, run.EnhancedOutput, benchmark.PathEnhanced, run.EnhancedFailed)
	response.OutputA = outputA.Redacted(expose)
	response.OutputB = outputB.Redacted(expose)

	reasons, errReasons := storedReasons(run.Reasons)
	response.Verdict.Reasons = reasons

	var errCriteria error
	if len(run.Criteria) > 0 {
		if err := json.Unmarshal(run.Criteria, &response.Verdict.Criteria); err != nil {
			response.Verdict.Criteria = benchmark.Criteria{}
			errCriteria = fmt.Errorf("decode criteria: %w", err)
		}
	}

	return response, errors.Join(errA, errB, errReasons, errCriteria)
}

// BenchmarkHistoryItem summarises a stored benchmark run.
type BenchmarkHistoryItem struct {
	ReferenceID    string    `json:"referenceId"`
	ModelID        string    `json:"modelId"`
	Accepted       bool      `json:"accepted"`
	Reasons        []string  `json:"reasons"`
	OriginalFailed bool      `json:"originalFailed"`
	EnhancedFailed bool      `json:"enhancedFailed"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BenchmarkHistoryResponse is a page of the caller's benchmark runs.
type BenchmarkHistoryResponse struct {
	Items    []BenchmarkHistoryItem `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// NewBenchmarkHistoryItem converts a stored run into its summary form.
func NewBenchmarkHistoryItem(run models.BenchmarkRun) (BenchmarkHistoryItem, error) {
	reasons, err := storedReasons(run.Reasons)
	return BenchmarkHistoryItem{
		ReferenceID:    run.ReferenceID,
		ModelID:        run.ModelID,
		Accepted:       run.Accepted,
		Reasons:        reasons,
		OriginalFailed: run.OriginalFailed,
		EnhancedFailed: run.EnhancedFailed,
		CreatedAt:      run.CreatedAt,
	}, err
}

func storedReasons(raw []byte) ([]string, error) {
	reasons := []string{}
	if len(raw) == 0 {
		return reasons, nil
	}
	if err := json.Unmarshal(raw, &reasons); err != nil {
		return []string{}, fmt.Errorf("decode reasons: %w", err)
	}
	return reasons, nil
}

func storedOutcome(raw []byte, text string, path benchmark.Path, failed bool) (OutcomeResponse, error) {
	fallback := OutcomeResponse{Text: text, PathKind: string(path), Failed: failed}
	if len(raw) == 0 {
		return fallback, nil
	}
	outcome := fallback
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return fallback, fmt.Errorf("decode %s outcome: %w", path, err)
	}
	return outcome, nil
}
