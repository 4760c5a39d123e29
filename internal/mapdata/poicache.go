package mapdata

import (
	"sync"
	"time"

	"github.com/jengzang/travel-atlas-go/internal/models"
)

const (
	defaultPOITTL        = 5 * time.Minute
	defaultPOIMaxEntries = 1024
)

type poiEntry struct {
	pois    []*models.POI
	updated time.Time
}

// poiCache holds POI results per quantized viewport key. Entries older than
// ttl are misses; when full, the oldest entry is evicted.
type poiCache struct {
	mu      sync.Mutex
	entries map[string]poiEntry
	gen     uint64
	ttl     time.Duration
	max     int
	now     func() time.Time
}

func newPOICache(ttl time.Duration, maxEntries int, now func() time.Time) *poiCache {
	if ttl <= 0 {
		ttl = defaultPOITTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultPOIMaxEntries
	}
	return &poiCache{
		entries: make(map[string]poiEntry),
		ttl:     ttl,
		max:     maxEntries,
		now:     now,
	}
}

func (c *poiCache) get(key string) ([]*models.POI, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.updated) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.pois, true
}

func (c *poiCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *poiCache) put(key string, pois []*models.POI, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictOldest()
	}
	c.entries[key] = poiEntry{pois: pois, updated: c.now()}
}

func (c *poiCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.updated.Before(oldest) {
			oldestKey, oldest, first = k, e.updated, false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *poiCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]poiEntry)
	c.gen++
}

func (c *poiCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
