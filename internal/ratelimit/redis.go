package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix is the Redis key prefix for per-client windows.
const redisKeyPrefix = "ratelimit:client:"

// fixedWindowScript runs one fixed-window step atomically.
// The key is a hash of {count, window_start}; times are in milliseconds.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local max = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'count', 'window_start')
	local count = tonumber(data[1])
	local window_start = tonumber(data[2])
	local allowed = 1

	if count == nil or window_start == nil or (now - window_start) > window then
		count = 1
		window_start = now
	elseif count >= max then
		allowed = 0
	else
		count = count + 1
	end

	redis.call('HSET', key, 'count', count, 'window_start', window_start)
	redis.call('PEXPIRE', key, ttl)

	return {allowed, count, window_start}
`)

// Redis is a fixed-window limiter whose records live in Redis, so the
// limiter table survives restarts and can be inspected externally.
type Redis struct {
	cfg    Config
	client redis.Scripter
	logger *slog.Logger
	now    func() time.Time
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client redis.Scripter, cfg Config, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		cfg:    cfg.withDefaults(),
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Allow records a request from clientID and reports whether it may proceed.
// Redis failures fail open.
func (r *Redis) Allow(ctx context.Context, clientID string) (*Result, error) {
	now := r.now()
	key := redisKeyPrefix + hashClientID(clientID)

	// Keep the record around for one extra window so a reset is observed
	// by the script rather than by key expiry.
	ttl := 2 * r.cfg.Window

	out, err := fixedWindowScript.Run(ctx, r.client,
		[]string{key},
		r.cfg.MaxRequests, r.cfg.Window.Milliseconds(), now.UnixMilli(), ttl.Milliseconds(),
	).Int64Slice()
	if err != nil || len(out) != 3 {
		r.logger.Warn("rate limit store unavailable, allowing request",
			slog.Any("error", err),
		)
		return newResult(r.cfg, true, 0, now, now), nil
	}

	allowed := out[0] == 1
	count := int(out[1])
	windowStart := time.UnixMilli(out[2])

	return newResult(r.cfg, allowed, count, windowStart, now), nil
}
