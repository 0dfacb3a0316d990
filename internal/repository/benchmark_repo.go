package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/promptlab-api/internal/models"
)

// BenchmarkRepository persists benchmark runs.
type BenchmarkRepository interface {
	Create(ctx context.Context, run *models.BenchmarkRun) error
	GetByReference(ctx context.Context, ownerID, referenceID string) (models.BenchmarkRun, error)
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]models.BenchmarkRun, int64, error)
}

type benchmarkRepository struct {
	db *gorm.DB
}

// NewBenchmarkRepository constructs a repository backed by GORM.
func NewBenchmarkRepository(db *gorm.DB) BenchmarkRepository {
	return &benchmarkRepository{db: db}
}

func (r *benchmarkRepository) Create(ctx context.Context, run *models.BenchmarkRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByReference only matches runs created by ownerID.
func (r *benchmarkRepository) GetByReference(ctx context.Context, ownerID, referenceID string) (models.BenchmarkRun, error) {
	var run models.BenchmarkRun
	err := r.db.WithContext(ctx).Where("reference_id = ? AND owner_id = ?", referenceID, ownerID).First(&run).Error
	return run, err
}

func (r *benchmarkRepository) ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]models.BenchmarkRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BenchmarkRun{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.BenchmarkRun
	if err := filter.apply(query.Order("created_at DESC").Order("id DESC")).Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
