package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

var userSortColumns = map[string]string{
	"created_at": "created_at",
	"username":   "username",
	"email":      "email",
	"user_level": "user_level",
	"last_login": "last_login",
}

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) repositories.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("user '%s' already exists: %w", user.Username, repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user '%s': %w", username, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "username", username, excludeID)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

// exists checks soft-deleted rows too, since the unique index still covers them.
func (r *UserRepository) exists(ctx context.Context, column, value string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", column, err)
	}
	return count > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(user).
		Select("username", "email", "name", "password_hash", "user_level", "is_approved", "is_active", "updated_at").
		Updates(user)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("username or email taken: %w", repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", user.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.touch(ctx, userID, "last_login", at)
}

func (r *UserRepository) UpdateLastLogout(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.touch(ctx, userID, "last_logout", at)
}

func (r *UserRepository) touch(ctx context.Context, userID uuid.UUID, column string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update(column, at.UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, repositories.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, params repositories.ListParams) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})

	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	orderBy := "created_at DESC"
	if column, ok := userSortColumns[params.SortBy]; ok {
		direction := "ASC"
		if params.SortDesc {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", column, direction)
	}
	query = query.Order(orderBy)

	if params.PageSize > 0 {
		page := params.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * params.PageSize).Limit(params.PageSize)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ListSessions returns every user ordered by most recent login, never-logged-in last.
func (r *UserRepository) ListSessions(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("CASE WHEN last_login IS NULL THEN 1 ELSE 0 END, last_login DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

func (r *UserRepository) CountByLevel(ctx context.Context) (map[models.UserLevel]int64, error) {
	var rows []struct {
		UserLevel models.UserLevel
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("user_level, COUNT(*) AS total").
		Group("user_level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users by level: %w", err)
	}

	counts := map[models.UserLevel]int64{
		models.UserLevelAdmin:  0,
		models.UserLevelLevel1: 0,
		models.UserLevelLevel2: 0,
		models.UserLevelLevel3: 0,
	}
	for _, row := range rows {
		counts[row.UserLevel] = row.Total
	}
	return counts, nil
}

func (r *UserRepository) CountPendingAdmins(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_level = ? AND is_approved = ?", models.UserLevelAdmin, false).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending admins: %w", err)
	}
	return total, nil
}

// CountActiveSessions mirrors the in-memory session heuristic: a login at or
// after since with no logout recorded after it.
func (r *UserRepository) CountActiveSessions(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("last_login IS NOT NULL AND last_login >= ?", since.UTC()).
		Where("last_logout IS NULL OR last_logout < last_login").
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return total, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}
