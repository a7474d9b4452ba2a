package alias

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix     = "alias:"
	synonymsKeyPrefix  = cacheKeyPrefix + "synonyms:"
	referrersKeyPrefix = cacheKeyPrefix + "referrers:"
)

// CachedSource fronts another Source with a Redis read-through cache. Cache
// failures degrade to the underlying source.
type CachedSource struct {
	next    Source
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

type CachedSourceOption func(*CachedSource)

func WithLogger(logger *slog.Logger) CachedSourceOption {
	return func(c *CachedSource) { c.logger = logger }
}

func WithMetrics(m *Metrics) CachedSourceOption {
	return func(c *CachedSource) { c.metrics = m }
}

func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, opts ...CachedSourceOption) *CachedSource {
	c := &CachedSource{next: next, client: client, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedSource) Synonyms(ctx context.Context, name string) ([]string, error) {
	return c.readThrough(ctx, synonymsKeyPrefix+name, func() ([]string, error) {
		return c.next.Synonyms(ctx, name)
	})
}

func (c *CachedSource) Referrers(ctx context.Context, name string) ([]string, error) {
	return c.readThrough(ctx, referrersKeyPrefix+name, func() ([]string, error) {
		return c.next.Referrers(ctx, name)
	})
}

func (c *CachedSource) readThrough(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []string
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			c.metrics.IncCacheHit()
			return cached, nil
		}
	case !errors.Is(err, redis.Nil):
		c.warn(ctx, "alias cache read failed", err)
	}
	c.metrics.IncCacheMiss()

	names, err := load()
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	if payload, err := json.Marshal(names); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.warn(ctx, "alias cache write failed", err)
		}
	}
	return names, nil
}

// Invalidate drops every cached lookup.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, cacheKeyPrefix+"*", 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *CachedSource) warn(ctx context.Context, msg string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "error", err)
	}
}
