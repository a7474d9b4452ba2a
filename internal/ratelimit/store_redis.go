package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisStore keeps the sliding window in a sorted set per key so every
// replica shares one budget.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.now()
	redisKey := keyPrefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var (
		count  *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
		count = pipe.ZCard(ctx, redisKey)
		oldest = pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("read rate limit window: %w", err)
	}

	resetAt := now.Add(window)
	if first := oldest.Val(); len(first) > 0 {
		resetAt = time.Unix(0, int64(first[0].Score)).Add(window)
	}

	used := int(count.Val())
	if used >= limit {
		return Result{
			Limit:      limit,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		pipe.PExpire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("record request: %w", err)
	}

	if used == 0 {
		resetAt = now.Add(window)
	}
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - used - 1,
		ResetAt:   resetAt,
	}, nil
}
