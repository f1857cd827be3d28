package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/metrics"
)

// OverviewCacheKey holds the serialized Overview.
const OverviewCacheKey = "analytics:overview"

// Cache keeps the last computed Overview in redis. A nil *Cache is valid and
// never hits.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
	log logger.Logger
}

func NewCache(rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached overview, or false on a miss or any cache failure.
func (c *Cache) Get(ctx context.Context) (*Overview, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, OverviewCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("analytics cache read failed", map[string]interface{}{"error": err.Error()})
		}
		metrics.AnalyticsCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	var o Overview
	if err := json.Unmarshal(val, &o); err != nil {
		c.log.Warn("discarding corrupt analytics cache entry", map[string]interface{}{"error": err.Error()})
		metrics.AnalyticsCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.AnalyticsCache.WithLabelValues("hit").Inc()
	return &o, true
}

func (c *Cache) Set(ctx context.Context, o Overview) {
	if c == nil {
		return
	}
	data, err := json.Marshal(o)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, OverviewCacheKey, data, c.ttl).Err(); err != nil {
		c.log.Warn("analytics cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Invalidate drops the cached overview after data it depends on changed.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, OverviewCacheKey).Err(); err != nil {
		c.log.Warn("analytics cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
