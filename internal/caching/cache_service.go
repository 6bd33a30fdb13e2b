package caching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per key in fixed windows
type RateLimiter interface {
	// Allow records one request for key and reports whether it is within limit
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to Redis. addr may carry a redis:// or
// rediss:// scheme.
func NewRedisRateLimiter(addr, password string, db int) RateLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     parseAddr(addr),
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warnf("redis ping failed on initialization: %v (address: %s)", pingErr, parseAddr(addr))
	}

	return &redisRateLimiter{client: client}
}

func parseAddr(addr string) string {
	for _, scheme := range []string{"redis://", "rediss://"} {
		if strings.HasPrefix(addr, scheme) {
			return strings.TrimPrefix(addr, scheme)
		}
	}
	return addr
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("partsportal:ratelimit:%s", key)
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := rateLimitKey(key)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, cacheKey)
		pipe.ExpireNX(ctx, cacheKey, window)
		return nil
	})
	if err != nil {
		return false, err
	}

	return incr.Val() <= int64(limit), nil
}

func (r *redisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}
