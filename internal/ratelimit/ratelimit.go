// Package ratelimit provides per-client fixed-window request limiting.
//
// A client may send at most MaxRequests requests per window. The window
// starts at the client's first request and is discarded once more than
// Window has elapsed since it started; the count does not carry over.
// Because windows are fixed, a client can land up to 2*MaxRequests
// requests around a window boundary.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Defaults match the limits the service has always shipped with.
const (
	DefaultMaxRequests = 50
	DefaultWindow      = time.Minute
)

// ErrRateLimited is returned by Check when a client has exhausted its window.
var ErrRateLimited = errors.New("rate limit exceeded")

// Config holds fixed-window parameters.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter decides whether a client may proceed.
type Limiter interface {
	Allow(ctx context.Context, clientID string) (*Result, error)
}

// Check runs l for clientID and maps a rejection to ErrRateLimited.
func Check(ctx context.Context, l Limiter, clientID string) error {
	result, err := l.Allow(ctx, clientID)
	if err != nil {
		return err
	}
	if !result.Allowed {
		return ErrRateLimited
	}
	return nil
}

// newResult builds a Result for a window that started at windowStart and
// has seen count requests.
func newResult(cfg Config, allowed bool, count int, windowStart, now time.Time) *Result {
	resetAt := windowStart.Add(cfg.Window)

	remaining := cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	res := &Result{
		Allowed:   allowed,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		res.RetryAfter = resetAt.Sub(now)
		if res.RetryAfter < 0 {
			res.RetryAfter = 0
		}
	}
	return res
}

// hashClientID creates a truncated SHA256 hash of a client identifier so
// raw addresses are never written to shared storage.
func hashClientID(clientID string) string {
	hash := sha256.Sum256([]byte(clientID))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
