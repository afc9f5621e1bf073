package cache

import (
	"time"

	"github.com/go-redis/redis"
)

// RedisCache is an alternate ShortTTLCache backend for deployments that
// already run redis rather than memcache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ShortTTLCache = (*RedisCache)(nil)

// NewRedisCache wraps an existing redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: DefaultTTL}
}

// WithTTL overrides the default 120s TTL.
func (c *RedisCache) WithTTL(ttl time.Duration) *RedisCache {
	c.ttl = ttl
	return c
}

// MarkTaken implements ShortTTLCache.
func (c *RedisCache) MarkTaken(id string) error {
	return c.client.Set(namespacedKey(id), "1", c.ttl).Err()
}

// MarkAvailable implements ShortTTLCache.
func (c *RedisCache) MarkAvailable(id string) error {
	return c.client.Del(namespacedKey(id)).Err()
}

// IsTaken implements ShortTTLCache.
func (c *RedisCache) IsTaken(id string) (bool, error) {
	n, err := c.client.Exists(namespacedKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
