// Package cache wraps ristretto with TTL defaults and prefix-pattern
// invalidation for listing views.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration

	// ristretto cannot enumerate its keys, so track every key we set to
	// support DeleteByPattern. The set may over-retain keys evicted by
	// ristretto; deleting an absent key is harmless.
	mu   sync.Mutex
	keys map[string]struct{}
}

func New(maxCost int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl, keys: make(map[string]struct{})}, nil
}

func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

func (c *Cache) Set(key string, val any) {
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()
	c.c.SetWithTTL(key, val, 1, c.ttl)
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.keys, key)
	c.mu.Unlock()
	c.c.Del(key)
}

// DeleteByPattern removes every key matching the pattern. Only trailing-*
// prefix patterns are supported ("ipos:*"); a pattern without * is treated
// as an exact key.
func (c *Cache) DeleteByPattern(pattern string) {
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		c.Delete(pattern)
		return
	}

	c.mu.Lock()
	matched := make([]string, 0, len(c.keys))
	for k := range c.keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
			delete(c.keys, k)
		}
	}
	c.mu.Unlock()

	for _, k := range matched {
		c.c.Del(k)
	}
}

// Wait blocks until buffered writes are applied. Test helper; ristretto
// applies Sets asynchronously.
func (c *Cache) Wait() { c.c.Wait() }
