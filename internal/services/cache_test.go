package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client, time.Hour, 2, time.Second, quietLogger()), mr
}

func TestCacheService_RoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	entry := CachedBuild{
		BuildID: "b-1",
		Result:  &optimizer.BuildResult{TotalCost: 42, TotalScore: 99.5},
	}
	require.NoError(t, cache.Set(ctx, BuildCacheKey("abc"), entry))
	assert.True(t, mr.Exists("roster:build:abc"))
	assert.Equal(t, time.Hour, mr.TTL("roster:build:abc"))

	var got CachedBuild
	require.NoError(t, cache.Get(ctx, BuildCacheKey("abc"), &got))
	assert.Equal(t, "b-1", got.BuildID)
	assert.Equal(t, 42, got.Result.TotalCost)

	require.NoError(t, cache.Delete(ctx, BuildCacheKey("abc")))
	assert.ErrorIs(t, cache.Get(ctx, BuildCacheKey("abc"), &got), ErrCacheMiss)
}

func TestCacheService_MissDoesNotTripBreaker(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	var got CachedBuild
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cache.Get(ctx, "missing", &got), ErrCacheMiss)
	}
	assert.Equal(t, gobreaker.StateClosed, cache.State())
}

func TestCacheService_BreakerOpensOnFailures(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	var got CachedBuild
	for i := 0; i < 2; i++ {
		err := cache.Get(ctx, "k", &got)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCacheMiss)
	}
	assert.Equal(t, gobreaker.StateOpen, cache.State())

	err := cache.Get(ctx, "k", &got)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCacheService_Disabled(t *testing.T) {
	cache := NewCacheService(nil, time.Hour, 5, time.Second, quietLogger())
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	assert.NoError(t, cache.Set(ctx, "k", "v"))
	assert.NoError(t, cache.Ping(ctx))
	var out string
	assert.ErrorIs(t, cache.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestRequestHash(t *testing.T) {
	req := &optimizer.Request{
		Players: []optimizer.Player{{ID: "a", Role: optimizer.RoleGoalkeeper, Cost: 1, Rating: 50}},
		Config: optimizer.BuildConfig{
			TotalBudget:     100,
			RolePercentages: map[optimizer.Role]float64{"P": 10, "D": 30, "C": 30, "A": 30},
			RoleCounts:      map[optimizer.Role]int{"P": 1, "D": 1, "C": 1, "A": 1},
		},
	}
	opts := optimizer.DefaultOptions()

	h1, err := RequestHash(req, opts)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	parallel := opts
	parallel.Parallel = true
	h2, err := RequestHash(req, parallel)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	even := opts
	even.BudgetView = optimizer.BudgetViewEven
	h3, err := RequestHash(req, even)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	req.Config.TotalBudget = 101
	h4, err := RequestHash(req, opts)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)
}
