package services

import (
	"context"
	"fmt"

	"github.com/archivus/masterdocs/internal/app/config"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/auth/token"
	"github.com/archivus/masterdocs/internal/infrastructure/cache"
	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/repositories/postgresql"
	"github.com/archivus/masterdocs/internal/infrastructure/search"
	"github.com/archivus/masterdocs/internal/infrastructure/storage/local"
	s3storage "github.com/archivus/masterdocs/internal/infrastructure/storage/s3"
	"github.com/archivus/masterdocs/internal/infrastructure/storage/supabase"
	"github.com/archivus/masterdocs/pkg/logger"
)

// DevelopmentDatabaseURL is used outside production when DATABASE_URL is unset
const DevelopmentDatabaseURL = "masterdocs.db"

// ServiceManager manages all application services
type ServiceManager struct {
	Config *config.Config
	Logger *logger.Logger

	// Infrastructure
	DB           *database.DB
	Repositories *postgresql.Repositories
	CacheService services.CacheService
	Storage      services.StorageService
	Search       *search.Meili // nil when MEILI_URL is unset

	// Domain services
	TokenService    *token.Service
	ActivityService *services.ActivityService
	UserService     *services.UserService
	DocumentService *services.DocumentService
	DeletionService *services.DeletionService
	SummaryService  *services.SummaryService

	closers []func() error
}

// NewServiceManager opens the database and wires every service
func NewServiceManager(ctx context.Context, cfg *config.Config, log *logger.Logger) (*ServiceManager, error) {
	databaseURL := cfg.GetDatabaseURL()
	if databaseURL == "" {
		log.Warn("DATABASE_URL not set, using local SQLite database", "path", DevelopmentDatabaseURL)
		databaseURL = DevelopmentDatabaseURL
	}

	db, err := database.New(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sm, err := NewServiceManagerWithDB(ctx, cfg, db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	sm.closers = append(sm.closers, db.Close)
	return sm, nil
}

// NewServiceManagerWithDB wires every service on top of an open database.
// The caller keeps ownership of db.
func NewServiceManagerWithDB(ctx context.Context, cfg *config.Config, db *database.DB, log *logger.Logger) (*ServiceManager, error) {
	sm := &ServiceManager{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Repositories: postgresql.NewRepositories(db),
	}

	// Initialize cache service with Redis
	cacheService, err := cache.CreateCacheService(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache service: %w", err)
	}
	sm.CacheService = cacheService
	sm.closers = append(sm.closers, cacheService.Close)

	sm.Storage, err = newStorage(ctx, cfg)
	if err != nil {
		sm.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var indexer services.SearchIndexer
	if cfg.Search.MeiliURL != "" {
		sm.Search = search.NewMeili(cfg.Search.MeiliURL, cfg.Search.MeiliKey, log.With("component", "search"))
		sm.closers = append(sm.closers, func() error {
			sm.Search.Close()
			return nil
		})
		indexer = sm.Search
	}

	sm.TokenService, err = token.NewService(token.Config{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiry,
	})
	if err != nil {
		sm.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	repos := sm.Repositories
	sm.ActivityService = services.NewActivityService(repos.ActivityRepo, log)
	sm.UserService = services.NewUserService(
		repos.UserRepo,
		sm.ActivityService,
		sm.TokenService,
		sm.CacheService,
		log,
		services.DefaultUserServiceConfig(),
	)

	docConfig := services.DefaultDocumentServiceConfig()
	docConfig.MaxFileSize = cfg.Limits.MaxFileSize
	docConfig.MaxCreateAttempts = cfg.Limits.MaxCreateAttempts
	sm.DocumentService = services.NewDocumentService(
		repos.DocumentRepo,
		repos.SubDocumentRepo,
		repos.CounterRepo,
		sm.ActivityService,
		sm.Storage,
		indexer,
		log,
		docConfig,
	)
	sm.DeletionService = services.NewDeletionService(
		repos.DocumentRepo,
		repos.SubDocumentRepo,
		repos.DeletionJobRepo,
		sm.ActivityService,
		sm.Storage,
		indexer,
		log,
	)
	sm.SummaryService = services.NewSummaryService(
		repos.UserRepo,
		repos.DocumentRepo,
		repos.SubDocumentRepo,
		sm.CacheService,
		log,
	)

	return sm, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (services.StorageService, error) {
	switch cfg.Storage.Type {
	case config.StorageSupabase:
		return supabase.NewStorageService(supabase.Config{
			URL:    cfg.Supabase.URL,
			APIKey: cfg.Supabase.ServiceKey,
			Bucket: cfg.Supabase.Bucket,
		})
	case config.StorageS3:
		return s3storage.NewStorageService(ctx, s3storage.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return local.NewStorageService(cfg.Storage.Path)
	}
}

// HealthCheck reports the first unhealthy dependency
func (sm *ServiceManager) HealthCheck(ctx context.Context) error {
	// Check database
	if err := sm.Repositories.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check Redis cache
	if err := sm.CacheService.Ping(ctx); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}

// Close gracefully shuts down all services in reverse order of creation
func (sm *ServiceManager) Close() error {
	var firstErr error
	for i := len(sm.closers) - 1; i >= 0; i-- {
		if err := sm.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	sm.closers = nil
	return firstErr
}
