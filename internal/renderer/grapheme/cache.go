package grapheme

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	cacheMaxEntries    = 4096
	cacheEvictionBatch = 256
	// Strings longer than this are not worth caching: the map key copy
	// costs more than the re-measure.
	cacheMaxKeyLen = 256
)

// widthCache memoizes Width results for repeated measurement of the
// same strings across frames.
type widthCache struct {
	mu      sync.RWMutex
	entries map[string]*widthEntry

	hits   atomic.Uint64
	misses atomic.Uint64
}

type widthEntry struct {
	width      int
	lastAccess int64
}

var measureCache = &widthCache{entries: make(map[string]*widthEntry)}

func (c *widthCache) width(s string) (int, bool) {
	if len(s) > cacheMaxKeyLen {
		return 0, false
	}
	c.mu.RLock()
	e, ok := c.entries[s]
	c.mu.RUnlock()
	if !ok {
		c.misses.Add(1)
		return 0, false
	}
	c.hits.Add(1)
	atomic.StoreInt64(&e.lastAccess, time.Now().UnixNano())
	return e.width, true
}

func (c *widthCache) store(s string, w int) {
	if len(s) > cacheMaxKeyLen {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= cacheMaxEntries {
		c.evictLocked()
	}
	c.entries[s] = &widthEntry{width: w, lastAccess: time.Now().UnixNano()}
}

// evictLocked drops the least recently used batch of entries.
func (c *widthCache) evictLocked() {
	type aged struct {
		key    string
		access int64
	}
	byAge := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		byAge = append(byAge, aged{k, atomic.LoadInt64(&e.lastAccess)})
	}
	sort.Slice(byAge, func(i, j int) bool { return byAge[i].access < byAge[j].access })
	n := cacheEvictionBatch
	if n > len(byAge) {
		n = len(byAge)
	}
	for _, a := range byAge[:n] {
		delete(c.entries, a.key)
	}
}

// CacheStats reports measurement cache effectiveness.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// MeasureCacheStats returns a snapshot of the width cache counters.
func MeasureCacheStats() CacheStats {
	measureCache.mu.RLock()
	n := len(measureCache.entries)
	measureCache.mu.RUnlock()
	return CacheStats{
		Hits:    measureCache.hits.Load(),
		Misses:  measureCache.misses.Load(),
		Entries: n,
	}
}

// ResetMeasureCache clears the width cache. Tests use it to get
// deterministic hit counts.
func ResetMeasureCache() {
	measureCache.mu.Lock()
	measureCache.entries = make(map[string]*widthEntry)
	measureCache.mu.Unlock()
	measureCache.hits.Store(0)
	measureCache.misses.Store(0)
}
