// internal/search/filters/cached_source.go
package filters

import (
	"context"
	"errors"
	"time"

	"petopia-search/internal/common/cache"
	"petopia-search/internal/common/logger"
	"petopia-search/internal/common/metrics"
)

// CachedOptionSource serves option lists from Redis and fills the cache from
// the wrapped source on a miss. A Redis failure is logged and bypassed so the
// cache can never make an option load fail.
type CachedOptionSource struct {
	next   OptionSource
	redis  *cache.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedOptionSource(next OptionSource, redis *cache.RedisClient, ttl time.Duration, log logger.Logger) *CachedOptionSource {
	return &CachedOptionSource{
		next:   next,
		redis:  redis,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "option-cache"}),
	}
}

func (c *CachedOptionSource) Regions(ctx context.Context) ([]string, error) {
	return c.cached(ctx, c.redis.Key("regions"), c.next.Regions)
}

func (c *CachedOptionSource) SubRegions(ctx context.Context, region string) ([]string, error) {
	return c.cached(ctx, c.redis.Key("sigungu", region), func(ctx context.Context) ([]string, error) {
		return c.next.SubRegions(ctx, region)
	})
}

func (c *CachedOptionSource) Categories(ctx context.Context) ([]string, error) {
	return c.cached(ctx, c.redis.Key("categories"), c.next.Categories)
}

func (c *CachedOptionSource) cached(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	var list []string
	err := c.redis.GetJSON(ctx, key, &list)
	switch {
	case err == nil && len(list) > 0:
		metrics.OptionCacheLookups.WithLabelValues("hit").Inc()
		return list, nil
	case err == nil, errors.Is(err, cache.ErrMiss):
		metrics.OptionCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.OptionCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("option cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	list, err = load(ctx)
	if err != nil || len(list) == 0 {
		// empty answers are not cached so the fallback path stays visible
		return list, err
	}
	if err := c.redis.SetJSON(ctx, key, list, c.ttl); err != nil {
		c.logger.Warn("option cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return list, nil
}
