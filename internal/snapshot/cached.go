package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront-workers/internal/catalog"
	"storefront-workers/internal/common/logger"
	"storefront-workers/internal/common/metrics"
)

// CachedSource keeps the last loaded snapshot in Redis for ttl. Redis failures are
// logged and the inner source is read directly.
type CachedSource struct {
	inner  Source
	cache  redis.Cmdable
	key    string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(inner Source, cache redis.Cmdable, key string, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		cache:  cache,
		key:    key,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"source": inner.Name(), "cacheKey": key}),
	}
}

func (c *CachedSource) Name() string { return c.inner.Name() }

func (c *CachedSource) Load(ctx context.Context) (catalog.Snapshot, error) {
	if snap, ok := c.lookup(ctx); ok {
		return snap, nil
	}

	snap, err := c.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, snap)
	return snap, nil
}

func (c *CachedSource) lookup(ctx context.Context) (catalog.Snapshot, bool) {
	raw, err := c.cache.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.SnapshotCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.SnapshotCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("snapshot cache read failed", map[string]interface{}{"error": err})
		return nil, false
	}

	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		metrics.SnapshotCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("discarding undecodable cached snapshot", map[string]interface{}{"error": err})
		return nil, false
	}

	metrics.SnapshotCacheRequests.WithLabelValues("hit").Inc()
	return catalog.Refs(products), true
}

func (c *CachedSource) store(ctx context.Context, snap catalog.Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("snapshot not cached", map[string]interface{}{"error": err})
		return
	}
	if err := c.cache.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("snapshot cache write failed", map[string]interface{}{"error": err})
	}
}

// Invalidate drops the cached snapshot so the next Load reads the inner source.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.cache.Del(ctx, c.key).Err()
}
