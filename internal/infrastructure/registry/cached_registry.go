package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TOPOSV/Fakturace/internal/domain/partner"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/cache"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/logger"
)

// CachedRegistry decorates a CompanyRegistry with a read-through cache.
// Registry data changes rarely, so lookups are cached for the configured TTL.
// Cache failures degrade to direct lookups instead of failing the request.
type CachedRegistry struct {
	inner partner.CompanyRegistry
	cache cache.CompanyCache
	ttl   time.Duration
}

// NewCachedRegistry wraps the given registry with the given cache
func NewCachedRegistry(inner partner.CompanyRegistry, companyCache cache.CompanyCache, ttl time.Duration) *CachedRegistry {
	return &CachedRegistry{
		inner: inner,
		cache: companyCache,
		ttl:   ttl,
	}
}

// LookupByICO returns the cached record when present, otherwise asks the
// wrapped registry and caches the answer.
func (r *CachedRegistry) LookupByICO(ctx context.Context, ico string) (*partner.CompanyRecord, error) {
	if record, err := r.cache.Get(ctx, ico); err == nil && record != nil {
		return record, nil
	} else if err != nil {
		logger.L(ctx).Warn("company cache read failed", zap.String("ico", ico), zap.Error(err))
	}

	record, err := r.inner.LookupByICO(ctx, ico)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, ico, record, r.ttl); err != nil {
		logger.L(ctx).Warn("company cache write failed", zap.String("ico", ico), zap.Error(err))
	}
	return record, nil
}

// Ensure CachedRegistry implements CompanyRegistry
var _ partner.CompanyRegistry = (*CachedRegistry)(nil)
