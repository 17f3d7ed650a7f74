package postgresql

import (
	"context"
	"fmt"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubDocumentRepository struct {
	db *database.DB
}

func NewSubDocumentRepository(db *database.DB) repositories.SubDocumentRepository {
	return &SubDocumentRepository{db: db}
}

func (r *SubDocumentRepository) CreateForParent(ctx context.Context, subDocument *models.SubDocument) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.Document
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").Where("id = ?", subDocument.ParentDocumentID).First(&parent).Error
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("parent document %s: %w", subDocument.ParentDocumentID, repositories.ErrNotFound)
			}
			return fmt.Errorf("failed to lock parent document: %w", err)
		}
		return tx.Create(subDocument).Error
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("sub document %s under %s: %w",
				subDocument.SubDocumentNo, subDocument.ParentDocumentID, repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create sub-document: %w", err)
	}
	return nil
}

func (r *SubDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SubDocument, error) {
	var subDocument models.SubDocument
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&subDocument).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("sub document %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sub-document: %w", err)
	}
	return &subDocument, nil
}

func (r *SubDocumentRepository) ListByParent(ctx context.Context, parentID uuid.UUID, includeDeleted bool) ([]models.SubDocument, error) {
	var subDocuments []models.SubDocument
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}
	err := query.Where("parent_document_id = ?", parentID).Order("sub_document_no ASC").Find(&subDocuments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-documents: %w", err)
	}
	return subDocuments, nil
}

// ListNumbersByParent includes soft-deleted rows so suggestions skip their numbers.
func (r *SubDocumentRepository) ListNumbersByParent(ctx context.Context, parentID uuid.UUID) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Unscoped().Model(&models.SubDocument{}).
		Where("parent_document_id = ?", parentID).Pluck("sub_document_no", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-document numbers: %w", err)
	}
	return numbers, nil
}

func (r *SubDocumentRepository) ListAll(ctx context.Context) ([]models.SubDocument, error) {
	var subDocuments []models.SubDocument
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&subDocuments).Error; err != nil {
		return nil, fmt.Errorf("failed to list sub-documents: %w", err)
	}
	return subDocuments, nil
}

func (r *SubDocumentRepository) Update(ctx context.Context, subDocument *models.SubDocument) error {
	result := r.db.WithContext(ctx).Model(subDocument).
		Select("title", "location", "description", "longitude", "latitude", "status", "updated_at").
		Updates(subDocument)
	if result.Error != nil {
		return fmt.Errorf("failed to update sub-document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sub document %s: %w", subDocument.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *SubDocumentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.SubDocument{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count sub-documents: %w", err)
	}
	return total, nil
}

func (r *SubDocumentRepository) Delete(ctx context.Context, id uuid.UUID, mode models.DeletionMode) error {
	query := r.db.WithContext(ctx)
	if mode == models.HardDelete {
		query = query.Unscoped()
	}
	result := query.Delete(&models.SubDocument{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete sub-document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sub document %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}
