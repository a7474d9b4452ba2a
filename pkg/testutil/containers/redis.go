//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"onboard/internal/platform/config"
	"onboard/internal/platform/redis"
)

const redisImage = "redis:7-alpine"

// RedisContainer is a throwaway Redis reached through the same client
// constructor the server uses.
type RedisContainer struct {
	URL    string
	Client *goredis.Client
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	c, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	url, err := c.ConnectionString(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		t.Fatalf("redis connection string: %v", err)
	}

	rc, err := redis.New(ctx, config.RedisConfig{
		URL:         url,
		PoolSize:    5,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		_ = c.Terminate(ctx)
		t.Fatalf("connect redis: %v", err)
	}

	// Shared across suites by the Manager, so no t.Cleanup here.
	return &RedisContainer{URL: url, Client: rc.Client}
}

// Reset empties the database between tests.
func (r *RedisContainer) Reset(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}
