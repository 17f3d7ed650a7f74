package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type DeletionJobRepository struct {
	db *database.DB
}

func NewDeletionJobRepository(db *database.DB) repositories.DeletionJobRepository {
	return &DeletionJobRepository{db: db}
}

func (r *DeletionJobRepository) Create(ctx context.Context, job *models.DeletionJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create deletion job: %w", err)
	}
	return nil
}

func (r *DeletionJobRepository) Update(ctx context.Context, job *models.DeletionJob) error {
	result := r.db.WithContext(ctx).Model(job).
		Select("status", "step", "attempts", "error_message", "started_at", "completed_at", "updated_at").
		Updates(job)
	if result.Error != nil {
		return fmt.Errorf("failed to update deletion job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("deletion job %s: %w", job.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *DeletionJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DeletionJob, error) {
	var job models.DeletionJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("deletion job %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get deletion job: %w", err)
	}
	return &job, nil
}

func (r *DeletionJobRepository) ListResumable(ctx context.Context, staleBefore time.Time, maxAttempts, limit int) ([]models.DeletionJob, error) {
	var jobs []models.DeletionJob
	err := r.db.WithContext(ctx).
		Where("(status = ? OR (status = ? AND updated_at < ?)) AND attempts < ?",
			models.DeletionFailed, models.DeletionProcessing, staleBefore.UTC(), maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resumable deletion jobs: %w", err)
	}
	return jobs, nil
}
