package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultTTL is used when a cache is constructed without a positive TTL.
const DefaultTTL = time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// expired reports whether the entry is past its expiry. An entry is still
// readable at exactly its expiry instant.
func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// TTL is a string-keyed in-process cache with per-entry expiry.
//
// Expiry is lazy: nothing runs in the background, and an expired entry is
// removed by the first Get that observes it. Keys that are written and
// never read again stay resident until overwritten, deleted or cleared.
type TTL[V any] struct {
	entries    *xsync.MapOf[string, entry[V]]
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewTTL creates a TTL cache whose entries live for defaultTTL unless a
// per-call TTL is given.
func NewTTL[V any](defaultTTL time.Duration, opts ...Option) *TTL[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	return &TTL[V]{
		entries:    xsync.NewMapOf[string, entry[V]](),
		defaultTTL: defaultTTL,
		now:        o.now,
	}
}

// DefaultTTL returns the TTL applied by Set.
func (c *TTL[V]) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Set stores value under key with the default TTL, replacing any entry.
func (c *TTL[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with the given TTL, replacing any entry.
// A non-positive ttl means the default TTL.
func (c *TTL[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.entries.Store(key, entry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	})
}

// Get returns the value for key if it is present and unexpired.
// An expired entry is deleted before Get returns.
func (c *TTL[V]) Get(key string) (V, bool) {
	now := c.now()

	e, ok := c.entries.Load(key)
	if ok && !e.expired(now) {
		return e.value, true
	}

	var zero V
	if !ok {
		return zero, false
	}

	// Re-check under the key's lock so a concurrent Set is never evicted.
	var (
		value V
		hit   bool
	)
	c.entries.Compute(key, func(old entry[V], loaded bool) (entry[V], bool) {
		if loaded && !old.expired(now) {
			value, hit = old.value, true
			return old, false
		}
		return old, true
	})

	return value, hit
}

// Delete removes key from the cache.
func (c *TTL[V]) Delete(key string) {
	c.entries.Delete(key)
}

// Clear removes every entry.
func (c *TTL[V]) Clear() {
	c.entries.Clear()
}

// Len returns the number of resident entries, expired or not.
func (c *TTL[V]) Len() int {
	return c.entries.Size()
}
