//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboard/internal/ratelimit"
	"onboard/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Reset(context.Background()))
	s.store = ratelimit.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) TestBudgetIsSharedAcrossStores() {
	ctx := context.Background()
	other := ratelimit.NewRedisStore(s.redis.Client)

	first, err := s.store.Allow(ctx, "client:portal", 2, time.Minute)
	s.Require().NoError(err)
	s.True(first.Allowed)
	s.Equal(1, first.Remaining)

	second, err := other.Allow(ctx, "client:portal", 2, time.Minute)
	s.Require().NoError(err)
	s.True(second.Allowed)
	s.Equal(0, second.Remaining)

	third, err := s.store.Allow(ctx, "client:portal", 2, time.Minute)
	s.Require().NoError(err)
	s.False(third.Allowed)
	s.Positive(third.RetryAfter)
}

func (s *RedisStoreSuite) TestWindowExpires() {
	ctx := context.Background()

	_, err := s.store.Allow(ctx, "client:portal", 1, 200*time.Millisecond)
	s.Require().NoError(err)
	refused, err := s.store.Allow(ctx, "client:portal", 1, 200*time.Millisecond)
	s.Require().NoError(err)
	s.False(refused.Allowed)

	s.Eventually(func() bool {
		res, err := s.store.Allow(ctx, "client:portal", 1, 200*time.Millisecond)
		return err == nil && res.Allowed
	}, 2*time.Second, 50*time.Millisecond)
}
