package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time manually instead of sleeping.
type fakeClock struct {
	current time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.current
}

func (f *fakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	c := New(ttl)
	c.now = clock.Now
	return c, clock
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("github:octocat", "payload")

	got, ok := c.Get("github:octocat")
	assert.True(t, ok)
	assert.Equal(t, "payload", got)
}

func TestCache_MissingKey(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	got, ok := c.Get("github:nobody")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_ExpiryTreatedAsAbsent(t *testing.T) {
	c, clock := newTestCache(time.Hour)

	c.Set("github:octocat", "payload")

	// Just inside the TTL: still present.
	clock.Advance(time.Hour)
	_, ok := c.Get("github:octocat")
	assert.True(t, ok)

	// Past the TTL: treated as absent.
	clock.Advance(time.Second)
	got, ok := c.Get("github:octocat")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_ExpiredEntryIsEvicted(t *testing.T) {
	c, clock := newTestCache(time.Hour)

	c.Set("github:octocat", "payload")
	clock.Advance(2 * time.Hour)

	// The expired Get should have removed the entry entirely.
	_, _ = c.Get("github:octocat")
	c.mu.Lock()
	_, stillThere := c.entries["github:octocat"]
	c.mu.Unlock()
	assert.False(t, stillThere)
}

func TestCache_SetAfterExpiryRestartsTTL(t *testing.T) {
	c, clock := newTestCache(time.Hour)

	c.Set("github:octocat", "stale")
	clock.Advance(2 * time.Hour)
	_, ok := c.Get("github:octocat")
	assert.False(t, ok)

	// A fresh Set on the same key succeeds and gets a full TTL.
	c.Set("github:octocat", "fresh")
	clock.Advance(30 * time.Minute)
	got, ok := c.Get("github:octocat")
	assert.True(t, ok)
	assert.Equal(t, "fresh", got)
}

func TestCache_SetOverwrites(t *testing.T) {
	c, clock := newTestCache(time.Hour)

	c.Set("bullets:octocat:standard", "first")
	clock.Advance(45 * time.Minute)
	c.Set("bullets:octocat:standard", "second")

	// The overwrite restarted the TTL, so 45 minutes later it's still live.
	clock.Advance(45 * time.Minute)
	got, ok := c.Get("bullets:octocat:standard")
	assert.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("github:octocat", "a")
	c.Set("github:torvalds", "b")

	got, ok := c.Get("github:torvalds")
	assert.True(t, ok)
	assert.Equal(t, "b", got)
}
