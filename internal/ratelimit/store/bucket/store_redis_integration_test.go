//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"artemiz/internal/ratelimit/store/bucket"
	"artemiz/pkg/testutil/containers"
)

type RedisBucketSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisBucketSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketSuite))
}

func (s *RedisBucketSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = bucket.NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketSuite) TestAllowsUpToLimit() {
	ctx := context.Background()
	for i := range 3 {
		res, err := s.store.Allow(ctx, "203.0.113.0:submit", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed, "request %d", i+1)
		s.Equal(3-(i+1), res.Remaining)
	}

	res, err := s.store.Allow(ctx, "203.0.113.0:submit", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(0, res.Remaining)
	s.Positive(res.RetryAfter)
	s.LessOrEqual(res.RetryAfter, 60)
}

func (s *RedisBucketSuite) TestKeysAreIndependent() {
	ctx := context.Background()
	res, err := s.store.Allow(ctx, "a", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = s.store.Allow(ctx, "b", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *RedisBucketSuite) TestWindowSlides() {
	ctx := context.Background()
	res, err := s.store.Allow(ctx, "slide", 1, 500*time.Millisecond)
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = s.store.Allow(ctx, "slide", 1, 500*time.Millisecond)
	s.Require().NoError(err)
	s.False(res.Allowed)

	s.Eventually(func() bool {
		res, err := s.store.Allow(ctx, "slide", 1, 500*time.Millisecond)
		return err == nil && res.Allowed
	}, 3*time.Second, 100*time.Millisecond)
}

func (s *RedisBucketSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "reset", 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "reset"))

	res, err := s.store.Allow(ctx, "reset", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
