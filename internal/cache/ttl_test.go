package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTTL_SetGet(t *testing.T) {
	t.Parallel()

	c := NewTTL[string](time.Minute)
	c.Set("a", "alpha")

	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Errorf("Get(a) = %q, %v; want alpha, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}
}

func TestTTL_DefaultTTLFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"positive", 5 * time.Minute, 5 * time.Minute},
		{"zero", 0, DefaultTTL},
		{"negative", -time.Second, DefaultTTL},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewTTL[int](tt.ttl)
			if c.DefaultTTL() != tt.want {
				t.Errorf("DefaultTTL() = %v, want %v", c.DefaultTTL(), tt.want)
			}
		})
	}
}

func TestTTL_LazyExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewTTL[int](10*time.Second, WithClock(clock.Now))
	c.Set("k", 1)

	// Exactly at the expiry instant the value is still served.
	clock.Advance(10 * time.Second)
	if v, ok := c.Get("k"); !ok || v != 1 {
		t.Fatalf("Get at expiry = %d, %v; want 1, true", v, ok)
	}

	// Past expiry the entry is reported absent...
	clock.Advance(time.Nanosecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Get after expiry should miss")
	}

	// ...and has been removed by that read.
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired read, want 0", c.Len())
	}
}

func TestTTL_ExpiredEntriesStayUntilRead(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewTTL[int](time.Second, WithClock(clock.Now))
	c.Set("a", 1)
	c.Set("b", 2)

	clock.Advance(time.Hour)

	// No background sweep.
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 before any read", c.Len())
	}

	c.Get("a")
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after reading one expired key", c.Len())
	}
}

func TestTTL_PerCallTTLOverridesDefault(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewTTL[string](time.Minute, WithClock(clock.Now))
	c.SetWithTTL("short", "s", time.Second)
	c.SetWithTTL("default", "d", 0)

	clock.Advance(2 * time.Second)

	if _, ok := c.Get("short"); ok {
		t.Error("short-lived entry should have expired")
	}
	if v, ok := c.Get("default"); !ok || v != "d" {
		t.Errorf("Get(default) = %q, %v; want d, true", v, ok)
	}
}

func TestTTL_SetOverwritesAndRefreshesExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewTTL[string](10*time.Second, WithClock(clock.Now))
	c.Set("k", "old")

	clock.Advance(8 * time.Second)
	c.Set("k", "new")

	clock.Advance(8 * time.Second)
	v, ok := c.Get("k")
	if !ok || v != "new" {
		t.Errorf("Get(k) = %q, %v; want new, true", v, ok)
	}
}

func TestTTL_DeleteAndClear(t *testing.T) {
	t.Parallel()

	c := NewTTL[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key should miss")
	}
	c.Delete("never-set")

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("cleared key should miss")
	}
}

func TestTTL_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewTTL[int](time.Second, WithClock(clock.Now))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k-%d", i%5)
			for j := 0; j < 100; j++ {
				c.Set(key, j)
				c.Get(key)
				if j%10 == 0 {
					clock.Advance(100 * time.Millisecond)
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 5 {
		t.Errorf("Len() = %d, want at most 5 distinct keys", c.Len())
	}
}
