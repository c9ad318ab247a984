package storage

import (
	"context"
	"sync"
	"time"
)

var _ SessionCache = (*MemorySessionCache)(nil)

type sessionCacheEntry struct {
	username  string
	expiresAt time.Time
}

type MemorySessionCache struct {
	mu      sync.RWMutex
	entries map[string]sessionCacheEntry

	done     chan struct{}
	interval time.Duration
}

func NewMemorySessionCache(cleanupInterval time.Duration) *MemorySessionCache {
	c := &MemorySessionCache{
		entries:  make(map[string]sessionCacheEntry),
		done:     make(chan struct{}),
		interval: cleanupInterval,
	}
	go c.cleanupLoop()
	return c
}

func (c *MemorySessionCache) GetUsername(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return "", ErrNotFound
	}
	return entry.username, nil
}

func (c *MemorySessionCache) SetUsername(_ context.Context, key string, username string, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = sessionCacheEntry{
		username:  username,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemorySessionCache) cleanupLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *MemorySessionCache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *MemorySessionCache) Close() error {
	close(c.done)
	return nil
}
