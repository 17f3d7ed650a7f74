package services

import (
	"context"
	"fmt"
	"time"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/google/uuid"
)

// ActiveSessionWindow is how long after a login a user still counts as active
const ActiveSessionWindow = time.Hour

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

// ActivityEntry is a single ledger record to append
type ActivityEntry struct {
	UserID      uuid.UUID
	Action      models.ActivityAction
	EntityType  models.EntityType
	EntityID    *uuid.UUID
	Description string
	Request     RequestInfo
}

// ActivityPage is one page of the ledger
type ActivityPage struct {
	Logs       []models.ActivityLog `json:"logs"`
	TotalCount int64                `json:"total_count"`
	HasMore    bool                 `json:"has_more"`
}

// ActivityService appends to and reads the activity ledger
type ActivityService struct {
	activityRepo repositories.ActivityLogRepository
	logger       *logger.Logger
}

func NewActivityService(activityRepo repositories.ActivityLogRepository, log *logger.Logger) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, logger: log}
}

// Record persists entry. Failures are logged and swallowed so the calling
// operation never fails because of the ledger.
func (s *ActivityService) Record(ctx context.Context, entry ActivityEntry) {
	log := &models.ActivityLog{
		UserID:      entry.UserID,
		Action:      entry.Action,
		EntityID:    entry.EntityID,
		Description: entry.Description,
		IPAddress:   entry.Request.IPAddress,
		UserAgent:   entry.Request.UserAgent,
	}
	if entry.EntityType != "" {
		entityType := entry.EntityType
		log.EntityType = &entityType
	}

	if err := s.activityRepo.Create(ctx, log); err != nil {
		s.logger.Error("Failed to record activity",
			"user_id", entry.UserID,
			"action", entry.Action,
			"description", entry.Description,
			"error", err)
	}
}

// List returns the ledger newest first. Admins see every entry, everyone
// else only their own.
func (s *ActivityService) List(ctx context.Context, actor Actor, offset, limit int) (*ActivityPage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	filter := repositories.ActivityFilter{Offset: offset, Limit: limit}
	if !actor.Level.IsExactly(models.UserLevelAdmin) {
		userID := actor.ID
		filter.UserID = &userID
	}

	logs, total, err := s.activityRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	return &ActivityPage{
		Logs:       logs,
		TotalCount: total,
		HasMore:    total > int64(offset+limit),
	}, nil
}

// IsActiveSession reports whether user looks logged in at now: a login within
// ActiveSessionWindow and no logout recorded after it. This is a heuristic; an
// abandoned but unexpired token still counts as active.
func IsActiveSession(user *models.User, now time.Time) bool {
	if user.LastLogin == nil {
		return false
	}
	login := *user.LastLogin
	if now.Sub(login) > ActiveSessionWindow {
		return false
	}
	return user.LastLogout == nil || user.LastLogout.Before(login)
}
