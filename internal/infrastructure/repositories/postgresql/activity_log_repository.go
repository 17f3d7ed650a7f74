package postgresql

import (
	"context"
	"fmt"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"gorm.io/gorm"
)

type ActivityLogRepository struct {
	db *database.DB
}

func NewActivityLogRepository(db *database.DB) repositories.ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(log).Error; err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

func (r *ActivityLogRepository) List(ctx context.Context, filter repositories.ActivityFilter) ([]models.ActivityLog, int64, error) {
	var logs []models.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	// Deleted users keep their history, so the preload is unscoped
	err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Select("id", "username", "name", "user_level")
		}).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return logs, total, nil
}
