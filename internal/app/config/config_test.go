package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/masterdocs")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageLocal, cfg.Storage.Type)
	assert.Equal(t, int64(10*1024*1024), cfg.Limits.MaxFileSize)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5, cfg.Worker.MaxAttempts)
	assert.False(t, cfg.Worker.CleanupMissingFiles)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"missing database in production", map[string]string{"DATABASE_URL": ""}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "ftp"}},
		{"supabase without key", map[string]string{"STORAGE_TYPE": "supabase", "SUPABASE_URL": "https://x.supabase.co"}},
		{"s3 without credentials", map[string]string{"STORAGE_TYPE": "s3", "S3_ENDPOINT": "localhost:9000"}},
		{"bad expiry", map[string]string{"JWT_EXPIRY": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "production")
			t.Setenv("DATABASE_URL", "postgres://localhost/masterdocs")
			t.Setenv("JWT_SECRET", "secret")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := &Config{
		Environment: "test",
		Database:    DatabaseConfig{URL: "main", TestURL: "test"},
	}
	assert.Equal(t, "test", cfg.GetDatabaseURL())

	cfg.Environment = "development"
	assert.Equal(t, "main", cfg.GetDatabaseURL())
}
