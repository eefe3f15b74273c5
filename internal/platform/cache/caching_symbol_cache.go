// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
)

// StampedSymbolCache is the authoritative store behind the Redis layer.
// Stamp reports the current version of an entry without parsing it.
type StampedSymbolCache interface {
	usecase.SymbolCache
	Stamp(ctx context.Context, profile entity.ExchangeProfile) (entity.CacheStamp, bool, error)
}

// CachingSymbolCache decorates a SymbolCache with a shared Redis layer.
// The inner cache stays the source of truth: a Redis entry is served only while
// the inner entry still exists with the version the Redis copy was taken from.
type CachingSymbolCache struct {
	inner     StampedSymbolCache
	rdb       *redis.Client
	ttl       time.Duration
	ttlFunc   TTLFunc
	namespace string
}

var _ usecase.SymbolCache = (*CachingSymbolCache)(nil)

// redisEntry is the JSON value stored under each key.
type redisEntry struct {
	Stamp entity.CacheStamp  `json:"stamp"`
	Table entity.SymbolTable `json:"table"`
}

// NewCachingSymbolCache decorates a SymbolCache with Redis caching.
// A ttl of 0 or less stores entries without expiry. If namespace is empty, it uses "symbols".
func NewCachingSymbolCache(rdb *redis.Client, ttl time.Duration, inner StampedSymbolCache, namespace string) *CachingSymbolCache {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "symbols"
	}
	return &CachingSymbolCache{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// WithTTLFunc makes every write expire at fn(now) instead of the fixed ttl.
func (c *CachingSymbolCache) WithTTLFunc(fn TTLFunc) *CachingSymbolCache {
	c.ttlFunc = fn
	return c
}

// Read serves the Redis copy when it matches the inner entry's stamp and falls
// back to the inner cache otherwise, repopulating Redis on an inner hit.
func (c *CachingSymbolCache) Read(ctx context.Context, profile entity.ExchangeProfile) (entity.SymbolTable, bool, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Read(ctx, profile)
	}

	key := c.cacheKey(profile)

	stamp, exists, err := c.inner.Stamp(ctx, profile)
	if err != nil {
		return entity.SymbolTable{}, false, err
	}
	if !exists {
		// ファイルが外部で削除された場合は Redis 側も破棄してミス扱い
		_ = c.rdb.Del(ctx, key).Err()
		return entity.SymbolTable{}, false, nil
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		entry, ok := decodeEntry(b, profile)
		if ok && entry.Stamp.Same(stamp) {
			return entry.Table, true, nil
		}
		// 壊れている、またはファイルと版が異なるエントリは削除
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to inner cache
	out, ok, err := c.inner.Read(ctx, profile)
	if err != nil || !ok {
		return out, ok, err
	}

	// 3) Store in cache (best effort)
	c.storeCurrent(ctx, profile, key, out)
	return out, true, nil
}

// Write persists to the inner cache, then refreshes the Redis entry.
func (c *CachingSymbolCache) Write(ctx context.Context, profile entity.ExchangeProfile, table entity.SymbolTable) error {
	if err := c.inner.Write(ctx, profile, table); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	c.storeCurrent(ctx, profile, c.cacheKey(profile), table)
	return nil
}

// Invalidate removes the entry from both layers.
func (c *CachingSymbolCache) Invalidate(ctx context.Context, profile entity.ExchangeProfile) error {
	if err := c.inner.Invalidate(ctx, profile); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, c.cacheKey(profile)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// decodeEntry accepts only well-formed entries: every row must hold one cell per
// column and the ticker column must be present.
func decodeEntry(b []byte, profile entity.ExchangeProfile) (redisEntry, bool) {
	var e redisEntry
	if err := json.Unmarshal(b, &e); err != nil || e.Table.Columns == nil {
		return redisEntry{}, false
	}
	if e.Table.Validate() != nil {
		return redisEntry{}, false
	}
	if _, ok := e.Table.ColumnIndex(profile.TickerColumn); !ok {
		return redisEntry{}, false
	}
	return e, true
}

// storeCurrent stamps table with the inner entry's current version and stores it.
func (c *CachingSymbolCache) storeCurrent(ctx context.Context, profile entity.ExchangeProfile, key string, table entity.SymbolTable) {
	stamp, ok, err := c.inner.Stamp(ctx, profile)
	if err != nil || !ok {
		return
	}
	ttl := c.ttl
	if c.ttlFunc != nil {
		ttl = c.ttlFunc(time.Now())
	}
	if b, err := json.Marshal(redisEntry{Stamp: stamp, Table: table}); err == nil {
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
	}
}

// cacheKey generates the cache key for an exchange's table.
func (c *CachingSymbolCache) cacheKey(profile entity.ExchangeProfile) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(profile.CacheFilename))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
