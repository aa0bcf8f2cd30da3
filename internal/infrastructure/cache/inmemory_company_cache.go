package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TOPOSV/Fakturace/internal/domain/partner"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultCompanyTTL      = 24 * time.Hour
)

// InMemoryCompanyCache implements CompanyCache using in-process storage.
// Suitable for single-instance deployments; state is not shared across
// processes.
type InMemoryCompanyCache struct {
	records sync.Map // map[string]*companyEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// companyEntry wraps a cached record with its expiration time
type companyEntry struct {
	record    *partner.CompanyRecord
	expiresAt time.Time
}

func (e *companyEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryCompanyCacheOption is a functional option for configuring the cache
type InMemoryCompanyCacheOption func(*InMemoryCompanyCache)

// WithInMemoryTTL sets the default TTL used when Set receives a zero TTL
func WithInMemoryTTL(ttl time.Duration) InMemoryCompanyCacheOption {
	return func(c *InMemoryCompanyCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryCompanyCacheOption {
	return func(c *InMemoryCompanyCache) {
		c.logger = logger
	}
}

// NewInMemoryCompanyCache creates a new in-memory company cache
func NewInMemoryCompanyCache(opts ...InMemoryCompanyCacheOption) *InMemoryCompanyCache {
	cache := &InMemoryCompanyCache{
		ttl:    defaultCompanyTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached company record, nil on a miss
func (c *InMemoryCompanyCache) Get(ctx context.Context, ico string) (*partner.CompanyRecord, error) {
	if value, ok := c.records.Load(ico); ok {
		entry := value.(*companyEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("company cache hit", zap.String("ico", ico))
			return entry.record, nil
		}
		c.records.Delete(ico)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("company cache miss", zap.String("ico", ico))
	return nil, nil
}

// Set stores a company record with the given TTL
func (c *InMemoryCompanyCache) Set(ctx context.Context, ico string, record *partner.CompanyRecord, ttl time.Duration) error {
	if record == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	c.records.Store(ico, &companyEntry{
		record:    record,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a cached record
func (c *InMemoryCompanyCache) Delete(ctx context.Context, ico string) error {
	c.records.Delete(ico)
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryCompanyCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit/miss counters for monitoring
func (c *InMemoryCompanyCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryCompanyCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.records.Range(func(key, value any) bool {
				if value.(*companyEntry).isExpired() {
					c.records.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryCompanyCache implements CompanyCache
var _ CompanyCache = (*InMemoryCompanyCache)(nil)
