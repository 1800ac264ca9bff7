package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache memoizes expensive per-session values (built catalogs) with LRU
// eviction and an absolute TTL. One mutex guards the whole cache, so two
// callers asking for the same missing key never build it twice.
type Cache[V any] struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, V]
}

func NewCache[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = 128
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// GetOrBuild returns the cached value for key or builds, stores and returns
// it. A failed build stores nothing.
func (c *Cache[V]) GetOrBuild(key string, build func() (V, error)) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(key); ok {
		return v, true, nil
	}
	v, err := build()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.lru.Add(key, v)
	return v, false, nil
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

// Put replaces the value for key, as a catalog reload does.
func (c *Cache[V]) Put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, v)
}

func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
