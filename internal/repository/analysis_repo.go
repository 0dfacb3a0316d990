package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/promptlab-api/internal/models"
)

// ListFilter paginates owner scoped listings.
type ListFilter struct {
	Page     int
	PageSize int
}

func (f ListFilter) apply(query *gorm.DB) *gorm.DB {
	if f.PageSize <= 0 {
		return query
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * f.PageSize).Limit(f.PageSize)
}

// AnalysisRepository persists prompt analyses.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.PromptAnalysis) error
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]models.PromptAnalysis, int64, error)
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository constructs a repository backed by GORM.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *models.PromptAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]models.PromptAnalysis, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PromptAnalysis{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.PromptAnalysis
	if err := filter.apply(query.Order("created_at DESC").Order("id DESC")).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
