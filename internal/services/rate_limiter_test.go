package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisRateLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	limiter := NewRedisRateLimiter(client, "otp_requests", 3, time.Minute)

	for i := range 3 {
		allowed, err := limiter.Allow(ctx, "a@example.com")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "b@example.com")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")

	assert.Equal(t, time.Minute, mr.TTL("otp_requests:a@example.com"))

	mr.FastForward(61 * time.Second)
	allowed, err = limiter.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, allowed, "window resets")
}

func TestRedisRateLimiter_BackendDown(t *testing.T) {
	mr, client := newMiniredis(t)
	limiter := NewRedisRateLimiter(client, "otp_requests", 3, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, ErrLimiterUnavailable)
}

func TestRedisRateLimiter_DisabledWithoutLimit(t *testing.T) {
	_, client := newMiniredis(t)
	limiter := NewRedisRateLimiter(client, "otp_requests", 0, time.Minute)

	for range 10 {
		allowed, err := limiter.Allow(context.Background(), "a@example.com")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestNoopRateLimiter(t *testing.T) {
	allowed, err := NoopRateLimiter{}.Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, allowed)
}
