package handlers

import (
	"os"
	"strconv"
)

// HandlerConfig provides environment-aware configuration for handlers
type HandlerConfig struct {
	// Pagination settings
	MaxPageSize     int `json:"max_page_size"`
	DefaultPageSize int `json:"default_page_size"`

	// Upload bodies above this size are rejected before parsing
	MaxFileSize int64 `json:"max_file_size"`

	// Error handling settings
	EnableDebugErrors bool `json:"enable_debug_errors"`

	// Environment
	Environment string `json:"environment"`
}

// NewHandlerConfig creates a new handler configuration with environment-specific defaults
func NewHandlerConfig() *HandlerConfig {
	config := &HandlerConfig{
		// Default values
		MaxPageSize:       100,
		DefaultPageSize:   20,
		MaxFileSize:       10 * 1024 * 1024, // 10MB
		EnableDebugErrors: false,
		Environment:       "production",
	}

	// Override with environment variables
	config.loadFromEnv()

	// Apply environment-specific overrides
	config.applyEnvironmentDefaults()

	return config
}

// loadFromEnv loads configuration from environment variables
func (c *HandlerConfig) loadFromEnv() {
	if val := os.Getenv("MAX_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.MaxPageSize = parsed
		}
	}

	if val := os.Getenv("DEFAULT_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.DefaultPageSize = parsed
		}
	}

	if val := os.Getenv("MAX_FILE_SIZE"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.MaxFileSize = parsed
		}
	}

	if val := os.Getenv("ENABLE_DEBUG_ERRORS"); val != "" {
		c.EnableDebugErrors = val == "true"
	}

	if val := os.Getenv("ENVIRONMENT"); val != "" {
		c.Environment = val
	}
}

// applyEnvironmentDefaults applies environment-specific default values
func (c *HandlerConfig) applyEnvironmentDefaults() {
	switch c.Environment {
	case "development", "dev", "test", "testing":
		c.EnableDebugErrors = true

	case "production", "prod":
		c.EnableDebugErrors = false
		// Stricter limits in production
		if c.MaxPageSize > 50 {
			c.MaxPageSize = 50
		}
	}
}

// ValidatePageSize ensures page size is within acceptable limits
func (c *HandlerConfig) ValidatePageSize(pageSize int) int {
	if pageSize < 1 {
		return c.DefaultPageSize
	}
	if pageSize > c.MaxPageSize {
		return c.MaxPageSize
	}
	return pageSize
}

// uploadBodyLimit leaves room for the multipart envelope and form fields
func (c *HandlerConfig) uploadBodyLimit() int64 {
	return c.MaxFileSize + 1024*1024
}
