package services

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheService.Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// CacheService interface for caching operations
type CacheService interface {
	// Basic operations
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Atomic operations
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	// IncrementWindow increments key and makes sure it expires, starting the
	// window when the key has no expiry yet
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// Cache key patterns for the application
const (
	// Revoked bearer tokens, keyed by jti
	RevokedTokenKeyPattern = "revoked_token:%s"

	// Rate limiting keys
	LoginRateLimitKeyPattern = "rate_limit:login:%s" // client ip

	// Dashboard summary
	SummaryCacheKey = "summary:dashboard"
)

// Common cache durations
const (
	CacheSummary = 30 * time.Second

	// Rate limiting windows
	RateLimitWindow = time.Minute
)
