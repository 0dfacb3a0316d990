package models

import (
	"time"

	"gorm.io/datatypes"
)

// PromptAnalysis stores one scored prompt.
type PromptAnalysis struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ReferenceID string         `gorm:"size:64;uniqueIndex" json:"reference_id"`
	OwnerID     string         `gorm:"size:128;index" json:"owner_id"`
	Prompt      string         `gorm:"type:text;not null" json:"prompt"`
	PromptHash  string         `gorm:"size:64;index" json:"prompt_hash"`
	Score       int            `gorm:"not null" json:"score"`
	Grade       string         `gorm:"size:4;not null" json:"grade"`
	Findings    datatypes.JSON `gorm:"type:json" json:"findings"`
	Issues      datatypes.JSON `gorm:"type:json" json:"issues"`
	Rewritten   *string        `gorm:"type:text" json:"rewritten,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BenchmarkRun stores both paths of a benchmark and its parity verdict.
type BenchmarkRun struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ReferenceID     string         `gorm:"size:64;uniqueIndex" json:"reference_id"`
	OwnerID         string         `gorm:"size:128;index" json:"owner_id"`
	ModelID         string         `gorm:"size:128;index" json:"model_id"`
	OriginalPrompt  string         `gorm:"type:text" json:"original_prompt"`
	EnhancedPrompt  string         `gorm:"type:text" json:"enhanced_prompt"`
	OriginalOutput  string         `gorm:"type:text" json:"original_output"`
	EnhancedOutput  string         `gorm:"type:text" json:"enhanced_output"`
	OriginalFailed  bool           `gorm:"not null;default:false" json:"original_failed"`
	EnhancedFailed  bool           `gorm:"not null;default:false" json:"enhanced_failed"`
	OriginalOutcome datatypes.JSON `gorm:"type:json" json:"original_outcome"`
	EnhancedOutcome datatypes.JSON `gorm:"type:json" json:"enhanced_outcome"`
	Accepted        bool           `gorm:"not null;default:false;index" json:"accepted"`
	Reasons         datatypes.JSON `gorm:"type:json" json:"reasons"`
	Criteria        datatypes.JSON `gorm:"type:json" json:"criteria"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
