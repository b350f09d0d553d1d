package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/nptel-tracker-api/internal/models"
)

// ImportJobRepository persists the audit trail of CSV ingestion runs.
type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	ListRecent(ctx context.Context, limit int) ([]models.ImportJob, error)
}

type importJobRepository struct {
	db *gorm.DB
}

// NewImportJobRepository constructs an import job repository.
func NewImportJobRepository(db *gorm.DB) ImportJobRepository {
	return &importJobRepository{db: db}
}

func (r *importJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *importJobRepository) ListRecent(ctx context.Context, limit int) ([]models.ImportJob, error) {
	if limit <= 0 {
		limit = 20
	}

	var jobs []models.ImportJob
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}

	return jobs, nil
}
