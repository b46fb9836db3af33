// api/cache/cache.go
package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// entry is a single cached value with its expiry bounds.
type entry struct {
	value      interface{}
	insertedAt time.Time
	expiresAt  time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Stats is a diagnostic snapshot of the cache. Size counts entries without
// pruning expired ones first; EstimatedBytes is a best-effort serialized
// size and must never drive eviction decisions.
type Stats struct {
	Size           int    `json:"size"`
	EstimatedBytes string `json:"estimated_bytes"`
}

// ObjectCache is a process-wide map of keys to opaque values with
// per-entry expiry. A value handed to Set is owned by the cache from then
// on; callers must not mutate it afterward. Expiry is enforced on every
// Get, so correctness never depends on the background sweep having run.
type ObjectCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration

	sweepInterval time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once
}

// New creates a cache with the given default TTL and starts the background
// sweep. A sweepInterval of zero disables the sweep; expired entries are
// then only removed lazily on Get.
func New(defaultTTL, sweepInterval time.Duration) *ObjectCache {
	c := &ObjectCache{
		entries:       make(map[string]entry),
		defaultTTL:    defaultTTL,
		sweepInterval: sweepInterval,
		stopSweep:     make(chan struct{}),
	}

	if sweepInterval > 0 {
		go c.sweepLoop()
	}

	return c
}

func (c *ObjectCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RemoveExpired()
		case <-c.stopSweep:
			return
		}
	}
}

// Set stores a value under key, unconditionally replacing any existing
// entry and resetting its expiry. A ttl of zero uses the default TTL.
func (c *ObjectCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := time.Now()

	c.mu.Lock()
	c.entries[key] = entry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	}
	c.mu.Unlock()
}

// Get returns the value stored under key if it exists and has not expired.
// A stale entry found here is deleted before reporting absence. Absence is
// a normal outcome, not an error.
func (c *ObjectCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if e.expired(time.Now()) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// replaced the entry with a fresh one.
		if cur, ok := c.entries[key]; ok && cur.expired(time.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Remove deletes the entry for key. Idempotent; a missing key is a no-op.
func (c *ObjectCache) Remove(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear empties the entire cache. Intended for full resets such as test
// teardown, never for steady-state request handling.
func (c *ObjectCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// RemoveExpired removes every entry whose expiry has passed. Called
// periodically by the sweep loop; safe to call directly.
func (c *ObjectCache) RemoveExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}

// Stats reports the current entry count and a human-readable size
// estimate (serialized length of keys and values).
func (c *ObjectCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var bytes int64
	for key, e := range c.entries {
		bytes += int64(len(key))
		if data, err := json.Marshal(e.value); err == nil {
			bytes += int64(len(data))
		}
	}

	return Stats{
		Size:           len(c.entries),
		EstimatedBytes: formatBytes(bytes),
	}
}

// Close stops the background sweep goroutine. The cache remains usable
// afterward; only lazy eviction applies.
func (c *ObjectCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopSweep)
	})
}

// GetAs retrieves a typed value from the cache. A stored value of a
// different dynamic type is treated as a miss.
func GetAs[T any](c *ObjectCache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
