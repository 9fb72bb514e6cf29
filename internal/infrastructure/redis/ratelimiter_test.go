package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	l := &FixedWindowLimiter{rdb: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	return l, mr
}

func TestFixedWindowLimiter_AllowsWithinCapacity(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()
	key := RouteKey("login", "203.0.113.9")

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be allowed", i)
		assert.Equal(t, i, d.Count)
		assert.Equal(t, 3-i, d.Remaining)
	}
}

func TestFixedWindowLimiter_RejectsOverCapacity(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()
	key := RouteKey("login", "203.0.113.9")

	for i := 0; i < 3; i++ {
		_, err := l.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
	}

	d, err := l.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestFixedWindowLimiter_WindowExpiryResetsCounter(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()
	key := RouteKey("register", "203.0.113.9")

	d, err := l.Allow(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	mr.FastForward(time.Minute + time.Second)

	d, err = l.Allow(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestFixedWindowLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	_, err := l.Allow(ctx, RouteKey("login", "a"), 1, time.Minute)
	require.NoError(t, err)
	d, err := l.Allow(ctx, RouteKey("login", "a"), 1, time.Minute)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = l.Allow(ctx, RouteKey("login", "b"), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a different client must not share a's window")
}

func TestFixedWindowLimiter_RedisNil_FailsOpen(t *testing.T) {
	l := NewFixedWindowLimiter(nil)

	d, err := l.Allow(context.Background(), "k", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 10, d.Remaining)
}

func TestFixedWindowLimiter_LimitZero_Allows(t *testing.T) {
	l := NewFixedWindowLimiter(nil)

	d, err := l.Allow(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowLimiter_RedisDown_ReturnsError(t *testing.T) {
	l, mr := newTestLimiter(t)
	mr.Close()

	_, err := l.Allow(context.Background(), "k", 3, time.Minute)
	assert.Error(t, err, "middleware decides fail-open, the limiter reports the truth")
}
