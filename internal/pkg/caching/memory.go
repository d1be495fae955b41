package caching

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/cache/v9"
)

// CacheMemory is a process-local Cache used by tests and by binaries that
// run without redis. TTLs are honored lazily on read.
type CacheMemory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func NewCacheMemory() *CacheMemory {
	return &CacheMemory{entries: map[string]memoryEntry{}}
}

func (c *CacheMemory) Get(ctx context.Context, key string, target any) error {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return cache.ErrCacheMiss
	}

	return json.Unmarshal(entry.payload, target)
}

func (c *CacheMemory) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *CacheMemory) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
