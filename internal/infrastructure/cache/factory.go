package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/TOPOSV/Fakturace/internal/infrastructure/config"
)

// CompanyCacheFactory creates company caches based on configuration
type CompanyCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CompanyCacheFactoryOption is a functional option for configuring the factory
type CompanyCacheFactoryOption func(*CompanyCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CompanyCacheFactoryOption {
	return func(f *CompanyCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) CompanyCacheFactoryOption {
	return func(f *CompanyCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCompanyCacheFactory creates a new factory
func NewCompanyCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...CompanyCacheFactoryOption) *CompanyCacheFactory {
	f := &CompanyCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed company cache
func (f *CompanyCacheFactory) CreateRedisCache() (CompanyCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisCompanyCache(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis company cache: %w", err)
	}
	return cache, nil
}

// CreateInMemoryCache creates an in-memory company cache
func (f *CompanyCacheFactory) CreateInMemoryCache() CompanyCache {
	return NewInMemoryCompanyCache(
		WithInMemoryTTL(f.cacheConfig.DefaultTTL),
		WithInMemoryLogger(f.logger),
	)
}

// CreateCache creates a company cache based on the configured backend.
// With the redis backend and fallback enabled, a Redis connection failure
// degrades to the in-memory cache instead of failing startup.
func (f *CompanyCacheFactory) CreateCache() (CompanyCache, error) {
	if f.cacheConfig.Backend != "redis" {
		return f.CreateInMemoryCache(), nil
	}

	cache, err := f.CreateRedisCache()
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, err
		}
		f.logger.Warn("redis unavailable, falling back to in-memory company cache",
			zap.Error(err))
		return f.CreateInMemoryCache(), nil
	}
	return cache, nil
}
