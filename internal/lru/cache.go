package lru

import (
	"container/list"
	"sync"
)

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a thread-safe fixed-capacity cache with least-recently-used
// eviction. Reads count as use.
type Cache[K comparable, V any] struct {
	capacity int
	mu       sync.RWMutex
	order    *list.List
}

func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
	}
}

func (c *Cache[K, V]) findUnsafe(key K) *list.Element {
	for element := c.order.Front(); element != nil; element = element.Next() {
		if element.Value.(*cacheEntry[K, V]).key == key {
			return element
		}
	}
	return nil
}

func (c *Cache[K, V]) putUnsafe(key K, value V) {
	if element := c.findUnsafe(key); element != nil {
		element.Value.(*cacheEntry[K, V]).value = value
		c.order.MoveToFront(element)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictUnsafe()
	}
	c.order.PushFront(&cacheEntry[K, V]{key: key, value: value})
}

func (c *Cache[K, V]) evictUnsafe() {
	element := c.order.Back()
	if element != nil {
		c.order.Remove(element)
	}
}

func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.putUnsafe(key, value)
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element := c.findUnsafe(key); element != nil {
		c.order.MoveToFront(element)
		return element.Value.(*cacheEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// GetOrCreate returns the cached value for key, generating and caching
// it on a miss. A generate error caches nothing.
func (c *Cache[K, V]) GetOrCreate(key K, generate func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element := c.findUnsafe(key); element != nil {
		c.order.MoveToFront(element)
		return element.Value.(*cacheEntry[K, V]).value, nil
	}

	value, err := generate()
	if err != nil {
		return value, err
	}

	c.putUnsafe(key, value)
	return value, nil
}

func (c *Cache[K, V]) Delete(key K) (present bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element := c.findUnsafe(key); element != nil {
		c.order.Remove(element)
		return true
	}
	return false
}

func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.order.Len()
}

func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
}

// Keys lists cached keys from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, c.order.Len())
	for element := c.order.Back(); element != nil; element = element.Prev() {
		keys = append(keys, element.Value.(*cacheEntry[K, V]).key)
	}
	return keys
}
