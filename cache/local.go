package cache

import (
	"sync"
	"time"

	"github.com/swarmq/core/mclock"
)

// LocalCache is an in-process ShortTTLCache, used by unit tests and the
// demo CLI so neither needs a live memcache/redis server. Expired
// entries are reaped lazily, on lookup, rather than by a background
// janitor, since this cache's lifetime is a single test or demo run.
type LocalCache struct {
	mu    sync.Mutex
	clock mclock.Clock
	ttl   time.Duration
	items map[string]time.Time // id -> expiry instant
}

var _ ShortTTLCache = (*LocalCache)(nil)

// NewLocalCache creates an in-memory cache using clock for TTL
// expiration checks (inject mclock.Simulated in tests that need to
// control time precisely).
func NewLocalCache(clock mclock.Clock) *LocalCache {
	return &LocalCache{
		clock: clock,
		ttl:   DefaultTTL,
		items: make(map[string]time.Time),
	}
}

// WithTTL overrides the default 120s TTL.
func (c *LocalCache) WithTTL(ttl time.Duration) *LocalCache {
	c.ttl = ttl
	return c
}

// MarkTaken implements ShortTTLCache.
func (c *LocalCache) MarkTaken(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = c.clock.Now().Add(c.ttl)
	return nil
}

// MarkAvailable implements ShortTTLCache.
func (c *LocalCache) MarkAvailable(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

// IsTaken implements ShortTTLCache.
func (c *LocalCache) IsTaken(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	expiry, ok := c.items[id]
	if !ok {
		return false, nil
	}
	if c.clock.Now().After(expiry) {
		delete(c.items, id)
		return false, nil
	}
	return true, nil
}
