//go:build integration

package guard_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"raceday/internal/race"
	"raceday/internal/registration/guard"
	"raceday/pkg/testutil/containers"
)

type RedisGuardSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	guard *guard.RedisGuard
}

func TestRedisGuardSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisGuardSuite))
}

func (s *RedisGuardSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.guard = guard.NewRedis(s.redis.Client.Client)
}

func (s *RedisGuardSuite) SetupTest() {
	s.Require().NoError(s.redis.DeleteKeys(context.Background(), "raceday:registration:*"))
}

func (s *RedisGuardSuite) TestAcquireRelease() {
	ctx := context.Background()
	key := guard.Key("ana@example.ro", race.Half)

	token, ok, err := s.guard.Acquire(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.True(ok)

	_, ok, err = s.guard.Acquire(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.False(ok)

	ttl, err := s.redis.Client.PTTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.guard.Release(ctx, key, token))
	_, ok, err = s.guard.Acquire(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisGuardSuite) TestReleaseWithStaleTokenKeepsLock() {
	ctx := context.Background()
	key := guard.Key("late@example.com", race.K10)

	_, ok, err := s.guard.Acquire(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.Require().True(ok)

	s.Require().NoError(s.guard.Release(ctx, key, "expired-holder"))
	exists, err := s.redis.Client.Exists(ctx, key).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}

func (s *RedisGuardSuite) TestConcurrentAcquireHasOneWinner() {
	ctx := context.Background()
	key := guard.Key("race@example.com", race.Ultra)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.guard.Acquire(ctx, key, time.Minute)
			s.NoError(err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}
