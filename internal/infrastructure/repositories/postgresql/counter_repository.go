package postgresql

import (
	"context"
	"fmt"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounterRepository struct {
	db *database.DB
}

func NewCounterRepository(db *database.DB) repositories.CounterRepository {
	return &CounterRepository{db: db}
}

func (r *CounterRepository) EnsureAtLeast(ctx context.Context, name string, floor int64) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter, err := lockCounter(tx, name)
		if err != nil {
			return err
		}
		value = counter.Value
		if counter.Value >= floor {
			return nil
		}
		if err := tx.Model(&models.DocumentCounter{}).Where("name = ?", name).Update("value", floor).Error; err != nil {
			return err
		}
		value = floor
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed counter %s: %w", name, err)
	}
	return value, nil
}

func (r *CounterRepository) Current(ctx context.Context, name string) (int64, error) {
	var counter models.DocumentCounter
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&counter).Error
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read counter %s: %w", name, err)
	}
	return counter.Value, nil
}

// lockCounter returns the counter row locked FOR UPDATE, creating it at zero
// on first use. It must run inside a transaction.
func lockCounter(tx *gorm.DB, name string) (*models.DocumentCounter, error) {
	var counter models.DocumentCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&counter).Error
	if err == nil {
		return &counter, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	// A concurrent creator wins the insert; we then block on its row lock.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.DocumentCounter{Name: name}).Error; err != nil {
		return nil, err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&counter).Error; err != nil {
		return nil, err
	}
	return &counter, nil
}

// nextCounterValue increments the locked counter row and returns the new value.
func nextCounterValue(tx *gorm.DB, name string) (int64, error) {
	counter, err := lockCounter(tx, name)
	if err != nil {
		return 0, err
	}
	next := counter.Value + 1
	if err := tx.Model(&models.DocumentCounter{}).Where("name = ?", name).Update("value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
