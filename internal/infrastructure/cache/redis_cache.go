package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/redis/go-redis/v9"
)

// MemoryURL selects an embedded in-process Redis instead of a server
const MemoryURL = "memory"

// RedisCacheService implements services.CacheService on Redis
type RedisCacheService struct {
	client   *redis.Client
	embedded *miniredis.Miniredis
}

// CreateCacheService connects to redisURL, or starts an embedded Redis when
// the URL is "memory"
func CreateCacheService(redisURL string) (*RedisCacheService, error) {
	var embedded *miniredis.Miniredis
	if redisURL == MemoryURL || redisURL == "" {
		server, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		embedded = server
		redisURL = "redis://" + server.Addr()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		if embedded != nil {
			embedded.Close()
		}
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		if embedded != nil {
			embedded.Close()
		}
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCacheService{client: client, embedded: embedded}, nil
}

// NewRedisCacheService wraps an existing client
func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{client: client}
}

func (c *RedisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCacheService) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", services.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, nil
}

func (c *RedisCacheService) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

func (c *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (c *RedisCacheService) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		return false, fmt.Errorf("cache setnx %s: %w", key, err)
	}
	return ok, nil
}

func (c *RedisCacheService) Increment(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache incr %s: %w", key, err)
	}
	return n, nil
}

func (c *RedisCacheService) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache incr %s: %w", key, err)
	}

	// A negative TTL means no expiry: either the first hit or an earlier
	// expire that never landed
	if ttl.Val() < 0 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("cache expire %s: %w", key, err)
		}
	}
	return incr.Val(), nil
}

func (c *RedisCacheService) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if err := c.client.Expire(ctx, key, expiration).Err(); err != nil {
		return fmt.Errorf("cache expire %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (c *RedisCacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection and the embedded server, if any
func (c *RedisCacheService) Close() error {
	err := c.client.Close()
	if c.embedded != nil {
		c.embedded.Close()
	}
	return err
}

// RateLimit counts a hit on key within window and reports whether the count
// is still within limit. The window starts at the first hit.
func RateLimit(ctx context.Context, cache services.CacheService, key string, limit int64, window time.Duration) (bool, error) {
	count, err := cache.IncrementWindow(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count <= limit, nil
}
