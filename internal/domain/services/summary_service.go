package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
)

const recentDocumentsLimit = 5

// SummaryService builds the dashboard counters
type SummaryService struct {
	userRepo   repositories.UserRepository
	docRepo    repositories.DocumentRepository
	subDocRepo repositories.SubDocumentRepository

	cache  CacheService
	logger *logger.Logger
	ttl    time.Duration
}

// NewSummaryService creates a summary service. cache may be nil.
func NewSummaryService(
	userRepo repositories.UserRepository,
	docRepo repositories.DocumentRepository,
	subDocRepo repositories.SubDocumentRepository,
	cache CacheService,
	log *logger.Logger,
) *SummaryService {
	return &SummaryService{
		userRepo:   userRepo,
		docRepo:    docRepo,
		subDocRepo: subDocRepo,
		cache:      cache,
		logger:     log,
		ttl:        CacheSummary,
	}
}

// Summary is the dashboard payload
type Summary struct {
	TotalUsers           int64             `json:"total_users"`
	Admins               int64             `json:"admins"`
	Level1               int64             `json:"level1"`
	Level2               int64             `json:"level2"`
	Level3               int64             `json:"level3"`
	PendingAdmins        int64             `json:"pending_admins"`
	TotalDocuments       int64             `json:"total_documents"`
	TotalMasterDocuments int64             `json:"total_master_documents"`
	TotalSubDocuments    int64             `json:"total_sub_documents"`
	ActiveSessions       int64             `json:"active_sessions"`
	RecentDocuments      []models.Document `json:"recent_documents"`
	GeneratedAt          time.Time         `json:"generated_at"`
}

// GetSummary returns the cached summary when fresh, otherwise recomputes it
func (s *SummaryService) GetSummary(ctx context.Context, now time.Time) (*Summary, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	summary, err := s.build(ctx, now)
	if err != nil {
		return nil, err
	}

	s.store(ctx, summary)
	return summary, nil
}

// Invalidate drops the cached summary
func (s *SummaryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, SummaryCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate summary cache", "error", err)
	}
}

func (s *SummaryService) build(ctx context.Context, now time.Time) (*Summary, error) {
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	byLevel, err := s.userRepo.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.userRepo.CountPendingAdmins(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.userRepo.CountActiveSessions(ctx, now.Add(-ActiveSessionWindow))
	if err != nil {
		return nil, err
	}

	masters, err := s.docRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	subs, err := s.subDocRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sub-documents: %w", err)
	}
	recent, err := s.docRepo.ListRecent(ctx, recentDocumentsLimit)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalUsers:           totalUsers,
		Admins:               byLevel[models.UserLevelAdmin],
		Level1:               byLevel[models.UserLevelLevel1],
		Level2:               byLevel[models.UserLevelLevel2],
		Level3:               byLevel[models.UserLevelLevel3],
		PendingAdmins:        pending,
		TotalDocuments:       masters + subs,
		TotalMasterDocuments: masters,
		TotalSubDocuments:    subs,
		ActiveSessions:       active,
		RecentDocuments:      recent,
		GeneratedAt:          now.UTC(),
	}, nil
}

func (s *SummaryService) fromCache(ctx context.Context) *Summary {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, SummaryCacheKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Failed to read summary cache", "error", err)
		}
		return nil
	}

	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.logger.Warn("Discarding malformed summary cache entry", "error", err)
		return nil
	}
	return &summary
}

func (s *SummaryService) store(ctx context.Context, summary *Summary) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, SummaryCacheKey, string(data), s.ttl); err != nil {
		s.logger.Warn("Failed to cache summary", "error", err)
	}
}
