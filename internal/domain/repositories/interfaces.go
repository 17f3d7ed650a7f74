package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// Sentinel errors every implementation wraps so services can branch with errors.Is
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrHasDependents = errors.New("record still has dependent rows")
)

// Core repository interfaces for clean architecture

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// ExistsByUsername ignores the user with excludeID, so updates can keep their own name
	ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	UpdateLastLogout(ctx context.Context, userID uuid.UUID, at time.Time) error
	List(ctx context.Context, params ListParams) ([]models.User, int64, error)
	ListSessions(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountByLevel(ctx context.Context) (map[models.UserLevel]int64, error)
	CountPendingAdmins(ctx context.Context) (int64, error)
	CountActiveSessions(ctx context.Context, since time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentRepository interface {
	// CreateWithNextNumber assigns document.DocumentNo from the counter row and
	// inserts the document in the same transaction.
	CreateWithNextNumber(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Update(ctx context.Context, document *models.Document) error
	List(ctx context.Context, filters DocumentFilters) ([]models.Document, int64, error)
	Search(ctx context.Context, query string, limit int) ([]models.Document, error)
	ListRecent(ctx context.Context, limit int) ([]models.Document, error)
	ListAll(ctx context.Context) ([]models.Document, error)
	ListDocumentNumbers(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	// Delete refuses with ErrHasDependents while any sub-document row, soft-deleted
	// or not, still references the document.
	Delete(ctx context.Context, id uuid.UUID, mode models.DeletionMode) error
}

type SubDocumentRepository interface {
	// CreateForParent looks up the parent and inserts inside one transaction.
	// A missing or deleted parent yields ErrNotFound.
	CreateForParent(ctx context.Context, subDocument *models.SubDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SubDocument, error)
	ListByParent(ctx context.Context, parentID uuid.UUID, includeDeleted bool) ([]models.SubDocument, error)
	ListNumbersByParent(ctx context.Context, parentID uuid.UUID) ([]string, error)
	ListAll(ctx context.Context) ([]models.SubDocument, error)
	Update(ctx context.Context, subDocument *models.SubDocument) error
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, mode models.DeletionMode) error
}

// ActivityLogRepository has no update or delete: entries are immutable
type ActivityLogRepository interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter) ([]models.ActivityLog, int64, error)
}

type CounterRepository interface {
	// EnsureAtLeast creates the counter if missing and raises it to floor; it never lowers it.
	EnsureAtLeast(ctx context.Context, name string, floor int64) (int64, error)
	Current(ctx context.Context, name string) (int64, error)
}

type DeletionJobRepository interface {
	Create(ctx context.Context, job *models.DeletionJob) error
	Update(ctx context.Context, job *models.DeletionJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DeletionJob, error)
	// ListResumable returns failed jobs and processing jobs not touched since staleBefore
	ListResumable(ctx context.Context, staleBefore time.Time, maxAttempts, limit int) ([]models.DeletionJob, error)
}

// Supporting types
type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by"`
	SortDesc bool   `json:"sort_desc"`
	Search   string `json:"search"`
}

type DocumentFilters struct {
	ListParams
	Status []models.DocStatus `json:"status"`
}

type ActivityFilter struct {
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
}
