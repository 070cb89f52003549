package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrLimiterUnavailable = errors.New("rate limiter backend unavailable")

// RateLimiter decides whether another attempt for key is allowed now.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisRateLimiter is a fixed-window counter: the first hit in a window sets
// the expiry, later hits only increment.
type RedisRateLimiter struct {
	redis  redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:  client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (l *RedisRateLimiter) key(key string) string {
	return l.prefix + ":" + key
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	count, err := l.redis.Incr(ctx, l.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, l.key(key), l.window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return count <= int64(l.limit), nil
}

// NoopRateLimiter allows everything. Used when redis is not configured.
type NoopRateLimiter struct{}

func (NoopRateLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}
