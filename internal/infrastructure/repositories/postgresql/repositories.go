package postgresql

import (
	"context"
	"fmt"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	UserRepo        repositories.UserRepository
	DocumentRepo    repositories.DocumentRepository
	SubDocumentRepo repositories.SubDocumentRepository
	ActivityRepo    repositories.ActivityLogRepository
	CounterRepo     repositories.CounterRepository
	DeletionJobRepo repositories.DeletionJobRepository

	// Internal reference to database for health checks
	db *database.DB
}

// NewRepositories creates a new repositories container
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		UserRepo:        NewUserRepository(db),
		DocumentRepo:    NewDocumentRepository(db),
		SubDocumentRepo: NewSubDocumentRepository(db),
		ActivityRepo:    NewActivityLogRepository(db),
		CounterRepo:     NewCounterRepository(db),
		DeletionJobRepo: NewDeletionJobRepository(db),
		db:              db,
	}
}

// HealthCheck verifies database connectivity
func (r *Repositories) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
