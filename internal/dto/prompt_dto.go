package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/promptlab-api/internal/analyzer"
	"github.com/noah-isme/promptlab-api/internal/models"
)

// AnalyzeRequest is the payload accepted by the analyze endpoint.
type AnalyzeRequest struct {
	Prompt string `json:"prompt" validate:"required,max=20000"`
}

// AnalysisResponse wraps an analysis result with persistence metadata.
type AnalysisResponse struct {
	ReferenceID string `json:"referenceId,omitempty"`
	analyzer.Result
	Cached bool `json:"cached"`
}

// EnhanceRequest asks for an analysed and rewritten prompt.
type EnhanceRequest struct {
	Prompt string `json:"prompt" validate:"required,max=20000"`
	Model  string `json:"model" validate:"omitempty,max=128"`
}

// EnhanceResponse carries the original analysis and the chosen rewrite.
type EnhanceResponse struct {
	Analysis       AnalysisResponse `json:"analysis"`
	EnhancedPrompt string           `json:"enhancedPrompt"`
	Source         string           `json:"source"`
	Attempts       int              `json:"attempts"`
	EnhancedScore  int              `json:"enhancedScore"`
	Improvement    int              `json:"improvement"`
}

// HistoryQuery paginates the analysis history.
type HistoryQuery struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// AnalysisHistoryItem is a stored analysis summary.
type AnalysisHistoryItem struct {
	ReferenceID string            `json:"referenceId"`
	Prompt      string            `json:"prompt"`
	Score       int               `json:"score"`
	Grade       string            `json:"grade"`
	Findings    analyzer.Findings `json:"findings"`
	Issues      []analyzer.Issue  `json:"issues"`
	Rewritten   *string           `json:"rewrittenPrompt"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// AnalysisHistoryResponse is a page of stored analyses.
type AnalysisHistoryResponse struct {
	Items    []AnalysisHistoryItem `json:"items"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

// NewAnalysisHistoryItem converts a stored analysis into its API form. Fields
// whose stored JSON cannot be decoded are left empty and the errors returned.
func NewAnalysisHistoryItem(model models.PromptAnalysis) (AnalysisHistoryItem, error) {
	item := AnalysisHistoryItem{
		ReferenceID: model.ReferenceID,
		Prompt:      model.Prompt,
		Score:       model.Score,
		Grade:       model.Grade,
		Findings:    analyzer.Findings{},
		Issues:      []analyzer.Issue{},
		Rewritten:   model.Rewritten,
		CreatedAt:   model.CreatedAt,
	}
	var errFindings, errIssues error
	if len(model.Findings) > 0 {
		if err := json.Unmarshal(model.Findings, &item.Findings); err != nil {
			item.Findings = analyzer.Findings{}
			errFindings = fmt.Errorf("decode findings: %w", err)
		}
	}
	if len(model.Issues) > 0 {
		if err := json.Unmarshal(model.Issues, &item.Issues); err != nil {
			item.Issues = []analyzer.Issue{}
			errIssues = fmt.Errorf("decode issues: %w", err)
		}
	}
	return item, errors.Join(errFindings, errIssues)
}
