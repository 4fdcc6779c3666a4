package api

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sync"
	"time"
)

// Cache is a TTL cache for API responses keyed by endpoint and query
// parameters. Expired entries are removed lazily by the Get that finds
// them; there is no background sweep and no size bound, which is fine for
// a single interactive session.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	stats   CacheStats

	now func() time.Time
}

type cacheEntry struct {
	payload json.RawMessage
	fetched time.Time
}

// CacheStats tracks cache effectiveness for the diagnostics view.
type CacheStats struct {
	Entries   int
	Hits      int
	Misses    int
	Evictions int
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// cacheKey builds a deterministic key from the endpoint and parameters.
// url.Values.Encode sorts by key, so parameter order never causes a miss.
func cacheKey(endpoint string, params url.Values) string {
	sum := md5.Sum([]byte(endpoint + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for the endpoint and parameters, or
// false if there is no fresh entry.
func (c *Cache) Get(endpoint string, params url.Values) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(endpoint, params)
	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	if c.now().Sub(entry.fetched) >= c.ttl {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return entry.payload, true
}

// Set stores a payload for the endpoint and parameters, stamped with the
// current time.
func (c *Cache) Set(endpoint string, params url.Values, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(endpoint, params)] = cacheEntry{
		payload: payload,
		fetched: c.now(),
	}
}

// Clear drops all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.stats = CacheStats{}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	return stats
}
