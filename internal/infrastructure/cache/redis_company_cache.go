package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TOPOSV/Fakturace/internal/domain/partner"
)

// RedisCompanyCache implements CompanyCache using Redis. Suitable for
// deployments where multiple instances should share registry lookups.
type RedisCompanyCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCompanyCache creates a new Redis-based company cache
func NewRedisCompanyCache(cfg RedisConfig) (*RedisCompanyCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCompanyCache{
		client:    client,
		keyPrefix: "registry:company:",
	}, nil
}

// NewRedisCompanyCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisCompanyCacheWithClient(client *redis.Client, keyPrefix string) *RedisCompanyCache {
	if keyPrefix == "" {
		keyPrefix = "registry:company:"
	}
	return &RedisCompanyCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a cached company record, nil on a miss
func (c *RedisCompanyCache) Get(ctx context.Context, ico string) (*partner.CompanyRecord, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+ico).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read company record from cache: %w", err)
	}

	var record partner.CompanyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cached company record: %w", err)
	}
	return &record, nil
}

// Set stores a company record with the given TTL
func (c *RedisCompanyCache) Set(ctx context.Context, ico string, record *partner.CompanyRecord, ttl time.Duration) error {
	if record == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode company record: %w", err)
	}

	if err := c.client.Set(ctx, c.keyPrefix+ico, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store company record in cache: %w", err)
	}
	return nil
}

// Delete removes a cached record
func (c *RedisCompanyCache) Delete(ctx context.Context, ico string) error {
	if err := c.client.Del(ctx, c.keyPrefix+ico).Err(); err != nil {
		return fmt.Errorf("failed to delete company record from cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCompanyCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisCompanyCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisCompanyCache implements CompanyCache
var _ CompanyCache = (*RedisCompanyCache)(nil)
