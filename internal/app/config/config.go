package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageLocal    = "local"
	StorageSupabase = "supabase"
	StorageS3       = "s3"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Storage     StorageConfig
	Supabase    SupabaseConfig
	S3          S3Config
	Search      SearchConfig
	Limits      LimitsConfig
	Worker      WorkerConfig
	Admin       AdminConfig
}

type ServerConfig struct {
	Host              string
	Port              string
	AllowedOrigins    []string
	ShutdownTimeout   time.Duration
	EnableDebugErrors bool
}

type DatabaseConfig struct {
	URL     string
	TestURL string
}

type RedisConfig struct {
	// URL may be "memory" to run an embedded server
	URL string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type StorageConfig struct {
	Type string
	Path string
}

type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type SearchConfig struct {
	MeiliURL string
	MeiliKey string
}

type LimitsConfig struct {
	MaxFileSize       int64
	LoginRateLimit    int
	LoginRateWindow   time.Duration
	DefaultPageSize   int
	MaxPageSize       int
	MaxCreateAttempts int
}

type WorkerConfig struct {
	Interval            time.Duration
	StaleAfter          time.Duration
	MaxAttempts         int
	BatchSize           int
	CleanupMissingFiles bool
}

type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// Load configuration from environment variables
func Load() (*Config, error) {
	// Load .env file in non-production environments
	env := os.Getenv("ENVIRONMENT")
	if env != "production" {
		// .env file is optional
		_ = godotenv.Load()
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:              getEnv("HOST", "localhost"),
			Port:              getEnv("PORT", "8080"),
			AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
			ShutdownTimeout:   parseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s")),
			EnableDebugErrors: parseBool(getEnv("ENABLE_DEBUG_ERRORS", "false")),
		},
		Database: DatabaseConfig{
			URL:     getEnv("DATABASE_URL", ""),
			TestURL: getEnv("DATABASE_URL_TEST", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: parseDuration(getEnv("JWT_EXPIRY", "24h")),
		},
		Storage: StorageConfig{
			Type: strings.ToLower(getEnv("STORAGE_TYPE", StorageLocal)),
			Path: getEnv("STORAGE_PATH", "./uploads"),
		},
		Supabase: SupabaseConfig{
			URL:        getEnv("SUPABASE_URL", ""),
			ServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:     getEnv("SUPABASE_BUCKET", "documents"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "masterdocs"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			UseSSL:    parseBool(getEnv("S3_USE_SSL", "true")),
		},
		Search: SearchConfig{
			MeiliURL: getEnv("MEILI_URL", ""),
			MeiliKey: getEnv("MEILI_MASTER_KEY", ""),
		},
		Limits: LimitsConfig{
			MaxFileSize:       parseInt64(getEnv("MAX_FILE_SIZE", "10485760")),
			LoginRateLimit:    parseInt(getEnv("LOGIN_RATE_LIMIT", "10")),
			LoginRateWindow:   parseDuration(getEnv("LOGIN_RATE_WINDOW", "1m")),
			DefaultPageSize:   parseInt(getEnv("DEFAULT_PAGE_SIZE", "20")),
			MaxPageSize:       parseInt(getEnv("MAX_PAGE_SIZE", "100")),
			MaxCreateAttempts: parseInt(getEnv("MAX_CREATE_ATTEMPTS", "3")),
		},
		Worker: WorkerConfig{
			Interval:            parseDuration(getEnv("WORKER_INTERVAL", "1m")),
			StaleAfter:          parseDuration(getEnv("WORKER_STALE_AFTER", "5m")),
			MaxAttempts:         parseInt(getEnv("WORKER_MAX_ATTEMPTS", "5")),
			BatchSize:           parseInt(getEnv("WORKER_BATCH_SIZE", "50")),
			CleanupMissingFiles: parseBool(getEnv("WORKER_CLEANUP_MISSING_FILES", "false")),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	// Validate required configuration
	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDatabaseURL returns the appropriate database URL based on environment
func (c *Config) GetDatabaseURL() string {
	if c.Environment == "test" && c.Database.TestURL != "" {
		return c.Database.TestURL
	}
	return c.Database.URL
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

func validate(config *Config) error {
	// Database URL is optional for development
	if config.IsProduction() && config.GetDatabaseURL() == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if config.JWT.Expiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be a positive duration")
	}
	if config.Limits.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}

	switch config.Storage.Type {
	case StorageLocal:
		if config.Storage.Path == "" {
			return fmt.Errorf("STORAGE_PATH is required for local storage")
		}
	case StorageSupabase:
		if config.Supabase.URL == "" || config.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for supabase storage")
		}
	case StorageS3:
		if config.S3.Endpoint == "" || config.S3.AccessKey == "" || config.S3.SecretKey == "" {
			return fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", config.Storage.Type)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(value string) int {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return 0
}

func parseInt64(value string) int64 {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	return 0
}

func parseBool(value string) bool {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return false
}

func parseDuration(value string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return 0
}
