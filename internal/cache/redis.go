// Package cache provides the in-process TTL cache and the Redis connection
// used by components that keep shared state outside the process.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Every request runs one limiter script before its handler, so Redis calls
// are kept short: a slow Redis makes the limiter fail open rather than
// stall admission.
const (
	redisDialTimeout = 2 * time.Second
	redisIOTimeout   = 250 * time.Millisecond
	redisPoolTimeout = time.Second
)

// Redis is the connection shared by the Redis rate limit backend and the
// readiness check. It is only opened when RATE_LIMIT_BACKEND=redis.
type Redis struct {
	client *redis.Client
}

// NewRedis parses redisURL, applies the limiter's timeouts and pings the
// server once. The returned error never contains the URL's password.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.DialTimeout = redisDialTimeout
	opt.ReadTimeout = redisIOTimeout
	opt.WriteTimeout = redisIOTimeout
	opt.PoolTimeout = redisPoolTimeout
	opt.MinIdleConns = 2
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opt.Addr, err)
	}

	return &Redis{client: client}, nil
}

// Ping reports whether Redis answers. It backs the "redis" readiness check.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the pool. It is registered as a server shutdown hook.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Client exposes the client to the Redis rate limiter, which loads its
// script through it.
func (r *Redis) Client() *redis.Client {
	return r.client
}
