package ratelimit

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type record struct {
	count       int
	windowStart time.Time
}

// Memory is an in-process fixed-window limiter. Each client's record is
// updated atomically; different clients don't contend.
type Memory struct {
	cfg     Config
	records *xsync.MapOf[string, record]
	now     func() time.Time
}

// MemoryOption configures a Memory limiter.
type MemoryOption func(*Memory)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an in-process limiter.
func NewMemory(cfg Config, opts ...MemoryOption) *Memory {
	m := &Memory{
		cfg:     cfg.withDefaults(),
		records: xsync.NewMapOf[string, record](),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Allow records a request from clientID and reports whether it may proceed.
func (m *Memory) Allow(_ context.Context, clientID string) (*Result, error) {
	now := m.now()

	var (
		allowed bool
		rec     record
	)
	m.records.Compute(clientID, func(old record, loaded bool) (record, bool) {
		switch {
		case !loaded || now.Sub(old.windowStart) > m.cfg.Window:
			rec = record{count: 1, windowStart: now}
			allowed = true
		case old.count >= m.cfg.MaxRequests:
			rec = old
			allowed = false
		default:
			rec = record{count: old.count + 1, windowStart: old.windowStart}
			allowed = true
		}
		return rec, false
	})

	return newResult(m.cfg, allowed, rec.count, rec.windowStart, now), nil
}

// Reset forgets clientID's window.
func (m *Memory) Reset(clientID string) {
	m.records.Delete(clientID)
}

// Len returns the number of tracked clients.
func (m *Memory) Len() int {
	return m.records.Size()
}
