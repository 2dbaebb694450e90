package chat

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a computed response stays servable when the
// dataset has not changed underneath it.
const DefaultCacheTTL = 10 * time.Minute

// CacheKey builds the lookup key for a classified query. The query text is
// used verbatim, so trivially different phrasings cache separately.
func CacheKey(intent, query string) string {
	return fmt.Sprintf("analytics:%s:%s", intent, query)
}

type cacheEntry struct {
	response Response
	storedAt time.Time
}

// Cache holds computed chat responses keyed by intent and query text.
// Entries expire after the configured TTL and are also considered stale as
// soon as the dataset file is newer than the entry, so edits to the dataset
// surface on the next request without waiting for expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewCache creates a response cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached response for key if it is neither expired nor older
// than datasetMod. Stale entries are evicted on the spot. A zero datasetMod
// (dataset unreadable) disables the staleness check.
func (c *Cache) Get(key string, datasetMod time.Time) (Response, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Response{}, false
	}

	expired := time.Since(entry.storedAt) > c.ttl
	stale := !datasetMod.IsZero() && datasetMod.After(entry.storedAt)
	if expired || stale {
		c.mu.Lock()
		// Re-check under the write lock; another request may have refreshed it.
		if current, ok := c.entries[key]; ok && current.storedAt.Equal(entry.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return Response{}, false
	}
	return entry.response, true
}

// Put stores a response under key, replacing any previous entry.
func (c *Cache) Put(key string, resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{response: resp, storedAt: time.Now()}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
