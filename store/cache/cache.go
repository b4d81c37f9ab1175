// Package cache provides a small in-memory TTL cache used by the store
// facade for hot lookups.
package cache

import (
	"sync"
	"time"
)

// Config holds cache settings.
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxItems        int
	OnEviction      func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL cache with periodic cleanup.
type Cache struct {
	config Config

	mu    sync.RWMutex
	items map[string]item

	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a new cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.MaxItems <= 0 {
		config.MaxItems = 1000
	}

	c := &Cache{
		config:   config,
		items:    make(map[string]item),
		stopChan: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict an arbitrary entry when full. The cache is advisory; precision
	// is not worth an LRU here.
	if len(c.items) >= c.config.MaxItems {
		for k, v := range c.items {
			delete(c.items, k)
			if c.config.OnEviction != nil {
				c.config.OnEviction(k, v.value)
			}
			break
		}
	}

	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of entries, expired included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
			if c.config.OnEviction != nil {
				c.config.OnEviction(k, it.value)
			}
		}
	}
}
