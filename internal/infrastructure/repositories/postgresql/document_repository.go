package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/archivus/masterdocs/internal/domain/numbering"
	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentSortColumns whitelists the columns callers may sort by
var documentSortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"document_no": "document_no",
	"title":       "title",
	"status":      "status",
}

type DocumentRepository struct {
	db *database.DB
}

func NewDocumentRepository(db *database.DB) repositories.DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateWithNextNumber(ctx context.Context, document *models.Document) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextCounterValue(tx, models.CounterMasterDocument)
		if err != nil {
			return fmt.Errorf("failed to allocate document number: %w", err)
		}
		document.DocumentNo = numbering.FormatDocumentNo(seq)
		return tx.Omit(clause.Associations).Create(document).Error
	})
	if err != nil {
		document.DocumentNo = ""
		if isDuplicateKeyError(err) {
			return fmt.Errorf("document number already taken: %w", repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := r.withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&document).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("document %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &document, nil
}

func (r *DocumentRepository) GetByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&document).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("document %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &document, nil
}

func (r *DocumentRepository) Update(ctx context.Context, document *models.Document) error {
	// Only metadata is mutable; the number, file and creator never change.
	result := r.db.WithContext(ctx).Model(document).
		Select("title", "location", "description", "longitude", "latitude", "status", "updated_at").
		Updates(document)
	if result.Error != nil {
		return fmt.Errorf("failed to update document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %s: %w", document.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *DocumentRepository) List(ctx context.Context, filters repositories.DocumentFilters) ([]models.Document, int64, error) {
	var documents []models.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Document{})

	if len(filters.Status) > 0 {
		query = query.Where("status IN ?", filters.Status)
	}

	// Apply search filter
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(document_no) LIKE ? OR LOWER(location) LIKE ?",
			pattern, pattern, pattern)
	}

	// Get total count
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	// Apply pagination and sorting
	page, pageSize := filters.Page, filters.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	orderBy := "created_at DESC"
	if column, ok := documentSortColumns[filters.SortBy]; ok {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", column, direction)
	}

	err := r.withRelations(query).Order(orderBy).Offset(offset).Limit(pageSize).Find(&documents).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	return documents, total, nil
}

func (r *DocumentRepository) Search(ctx context.Context, query string, limit int) ([]models.Document, error) {
	var documents []models.Document
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(document_no) LIKE ? OR LOWER(location) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	return documents, nil
}

func (r *DocumentRepository) ListRecent(ctx context.Context, limit int) ([]models.Document, error) {
	var documents []models.Document
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent documents: %w", err)
	}
	return documents, nil
}

func (r *DocumentRepository) ListAll(ctx context.Context) ([]models.Document, error) {
	var documents []models.Document
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}

// ListDocumentNumbers includes soft-deleted rows; their numbers stay taken.
func (r *DocumentRepository) ListDocumentNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Unscoped().Model(&models.Document{}).Pluck("document_no", &numbers).Error; err != nil {
		return nil, fmt.Errorf("failed to list document numbers: %w", err)
	}
	return numbers, nil
}

func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Document{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return total, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID, mode models.DeletionMode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Sub-document creation holds a share lock on the parent, so after
		// this lock no new child can appear.
		var document models.Document
		err := tx.Unscoped().Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "deleted_at").Where("id = ?", id).First(&document).Error
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("document %s: %w", id, repositories.ErrNotFound)
			}
			return fmt.Errorf("failed to lock document: %w", err)
		}

		var children int64
		if err := tx.Unscoped().Model(&models.SubDocument{}).Where("parent_document_id = ?", id).Count(&children).Error; err != nil {
			return fmt.Errorf("failed to count sub-documents: %w", err)
		}
		if children > 0 {
			return fmt.Errorf("document %s has %d sub-documents: %w", id, children, repositories.ErrHasDependents)
		}

		query := tx
		if mode == models.HardDelete {
			query = tx.Unscoped()
		} else if document.DeletedAt.Valid {
			return nil
		}

		if err := query.Delete(&models.Document{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	})
}

func (r *DocumentRepository) withRelations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "name", "user_level")
		}).
		Preload("SubDocuments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_document_no ASC")
		})
}
