package cache

import (
	"context"
	"time"

	"github.com/TOPOSV/Fakturace/internal/domain/partner"
)

// CompanyCache caches company registry lookups by ICO. A nil record with a
// nil error means the cache has no answer; callers then hit the registry.
type CompanyCache interface {
	// Get retrieves a cached company record, nil on a miss
	Get(ctx context.Context, ico string) (*partner.CompanyRecord, error)

	// Set stores a company record with the given TTL
	Set(ctx context.Context, ico string, record *partner.CompanyRecord, ttl time.Duration) error

	// Delete removes a cached record
	Delete(ctx context.Context, ico string) error

	// Close releases any resources held by the cache
	Close() error
}
