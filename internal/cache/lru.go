// Package cache provides a small bounded cache for quote-style lookups
// whose upstream answers go stale on their own (gift floor prices).
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a capacity-bounded cache where every entry also carries a TTL.
// A stale entry is treated as absent and dropped on the next lookup.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	index   map[K]*list.Element
	recency *list.List
	nowFunc func() time.Time
}

type slot[K comparable, V any] struct {
	key     K
	value   V
	staleAt time.Time
}

func NewLRU[K comparable, V any](max int, ttl time.Duration) *LRU[K, V] {
	return &LRU[K, V]{
		max:     max,
		ttl:     ttl,
		index:   make(map[K]*list.Element, max),
		recency: list.New(),
		nowFunc: time.Now,
	}
}

// Get returns the cached value for key, or false when the key is absent
// or its entry has gone stale.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.index[key]
	if !ok {
		return zero, false
	}
	s := elem.Value.(*slot[K, V])
	if !c.nowFunc().Before(s.staleAt) {
		c.drop(elem)
		return zero, false
	}
	c.recency.MoveToFront(elem)
	return s.value, true
}

// Put stores value under key with a fresh TTL, evicting the least
// recently used entry when the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		s := elem.Value.(*slot[K, V])
		s.value = value
		s.staleAt = c.nowFunc().Add(c.ttl)
		c.recency.MoveToFront(elem)
		return
	}

	if c.recency.Len() >= c.max {
		if oldest := c.recency.Back(); oldest != nil {
			c.drop(oldest)
		}
	}
	c.index[key] = c.recency.PushFront(&slot[K, V]{
		key:     key,
		value:   value,
		staleAt: c.nowFunc().Add(c.ttl),
	})
}

// Len counts resident entries, stale ones included until a Get touches them.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

func (c *LRU[K, V]) drop(elem *list.Element) {
	c.recency.Remove(elem)
	delete(c.index, elem.Value.(*slot[K, V]).key)
}
