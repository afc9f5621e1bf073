package cache

import (
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheCache backs ShortTTLCache with memcache, the same kind of
// store (App Engine's memcache module) the original Python implementation
// uses for its negative cache.
type MemcacheCache struct {
	client *memcache.Client
	ttl    time.Duration
}

var _ ShortTTLCache = (*MemcacheCache)(nil)

// NewMemcacheCache connects to the given memcache servers.
func NewMemcacheCache(servers ...string) *MemcacheCache {
	return &MemcacheCache{client: memcache.New(servers...), ttl: DefaultTTL}
}

// WithTTL overrides the default 120s TTL (spec.md §9 externalizes this).
func (c *MemcacheCache) WithTTL(ttl time.Duration) *MemcacheCache {
	c.ttl = ttl
	return c
}

// MarkTaken implements ShortTTLCache.
func (c *MemcacheCache) MarkTaken(id string) error {
	return c.client.Set(&memcache.Item{
		Key:        namespacedKey(id),
		Value:      []byte{1},
		Expiration: int32(c.ttl.Seconds()),
	})
}

// MarkAvailable implements ShortTTLCache.
func (c *MemcacheCache) MarkAvailable(id string) error {
	err := c.client.Delete(namespacedKey(id))
	if errors.Is(err, memcache.ErrCacheMiss) {
		// Already absent: MarkAvailable is idempotent.
		return nil
	}
	return err
}

// IsTaken implements ShortTTLCache.
func (c *MemcacheCache) IsTaken(id string) (bool, error) {
	_, err := c.client.Get(namespacedKey(id))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
