package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) *RedisLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisLimiter(rdb)
}

func TestAllowEnforcesQuota(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	for i := int64(0); i < Limits[ActionPost].Requests; i++ {
		ok, err := limiter.Allow(ctx, "actor-1", ActionPost)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, err := limiter.Allow(ctx, "actor-1", ActionPost)
	require.NoError(t, err)
	assert.False(t, ok, "attempt over the quota should be denied")
}

func TestAllowIsolatesActors(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	for i := int64(0); i < Limits[ActionPost].Requests; i++ {
		_, err := limiter.Allow(ctx, "busy-actor", ActionPost)
		require.NoError(t, err)
	}

	ok, err := limiter.Allow(ctx, "other-actor", ActionPost)
	require.NoError(t, err)
	assert.True(t, ok, "another actor's quota must be untouched")
}

func TestAllowIsolatesActions(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	for i := int64(0); i < Limits[ActionPost].Requests; i++ {
		_, err := limiter.Allow(ctx, "actor-1", ActionPost)
		require.NoError(t, err)
	}

	// Exhausting posts must not count against follows.
	ok, err := limiter.Allow(ctx, "actor-1", ActionFollow)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowWindowSlides(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	burst := Action("burst_test")
	Limits[burst] = Limit{Requests: 2, Window: 50 * time.Millisecond}
	defer delete(Limits, burst)

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "actor-1", burst)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "actor-1", burst)
	require.NoError(t, err)
	assert.False(t, ok)

	// Old attempts fall out of the window; capacity comes back without
	// waiting for a fixed-window reset.
	time.Sleep(60 * time.Millisecond)

	ok, err = limiter.Allow(ctx, "actor-1", burst)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowNeverOverAdmitsConcurrently(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	// Hammer the same actor from many goroutines. The check and the
	// add are one script, so exactly the quota gets through even when
	// every request races at the boundary.
	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := limiter.Allow(ctx, "actor-1", ActionPost)
			if err == nil && ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, Limits[ActionPost].Requests, admitted.Load())
}

func TestAllowUnknownAction(t *testing.T) {
	limiter := newTestLimiter(t)

	_, err := limiter.Allow(context.Background(), "actor-1", Action("nonsense"))
	assert.Error(t, err)
}
