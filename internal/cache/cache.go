// Package cache provides the bounded in-memory lookup cache that sits in
// front of the URL store on the redirect path.
//
// The cache is a read-through, write-invalidated projection of the store: it
// never holds the only copy of a value, so eviction or a restart is harmless.
// A lookup that found nothing in the store is remembered as a tombstone,
// which is distinct from a plain miss ("never looked up").
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultCapacity is used when a non-positive capacity is configured.
const DefaultCapacity = 1000

// Entry is a cached resolution of a short code.
type Entry struct {
	OriginalURL string
	ExpiresAt   *time.Time
	// Absent marks a tombstone: the store confirmed there is no such code.
	Absent bool
}

// Tombstone is the entry cached for codes the store does not know.
var Tombstone = Entry{Absent: true}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
	// TotalHits and TotalMisses count since creation and survive Clear.
	TotalHits   uint64 `json:"-"`
	TotalMisses uint64 `json:"-"`
}

// LRU is a strict least-recently-used cache. Reads and writes both count as
// access. Every operation runs inside one short critical section and never
// performs I/O.
type LRU struct {
	mu          sync.Mutex
	capacity    int
	items       *simplelru.LRU[string, Entry]
	hits        uint64
	misses      uint64
	totalHits   uint64
	totalMisses uint64

	// epoch is a logical clock ticked by every invalidation. invalidated
	// holds the tick of the last Invalidate per code; floor is the tick of
	// the last Clear or trim of invalidated, below which every token is
	// stale.
	epoch       uint64
	floor       uint64
	invalidated map[string]uint64
}

// New creates an LRU holding at most capacity entries.
func New(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &LRU{
		capacity:    capacity,
		items:       newItems(capacity),
		invalidated: make(map[string]uint64),
	}
}

func newItems(capacity int) *simplelru.LRU[string, Entry] {
	// NewLRU only fails for a non-positive size, which New rules out.
	items, _ := simplelru.NewLRU[string, Entry](capacity, nil)
	return items
}

// Get returns the cached entry for code and refreshes its recency. The
// second value is false on a cache miss. A found entry may be a tombstone.
func (c *LRU) Get(code string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items.Get(code)
	if !ok {
		c.misses++
		c.totalMisses++
		return Entry{}, false
	}

	c.hits++
	c.totalHits++
	return e, true
}

// Put inserts or overwrites the entry for code, evicting the least recently
// used entry first when the cache is full.
func (c *LRU) Put(code string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Add(code, e)
}

// Epoch returns a token for the current invalidation state. Read paths
// capture it before querying the store and hand it to PutIfEpoch afterwards.
func (c *LRU) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.epoch
}

// PutIfEpoch stores the entry only when code was not invalidated, and the
// cache not cleared, since epoch was taken. It reports whether the entry was
// stored.
func (c *LRU) PutIfEpoch(code string, e Entry, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch < c.floor || c.invalidated[code] > epoch {
		return false
	}

	c.items.Add(code, e)
	return true
}

// Invalidate removes the entry for code, if any.
func (c *LRU) Invalidate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Remove(code)
	c.epoch++

	// Forgetting per-code ticks is safe once floor covers them all; it only
	// rejects repopulations already in flight.
	if len(c.invalidated) >= c.capacity {
		clear(c.invalidated)
		c.floor = c.epoch
		return
	}
	c.invalidated[code] = c.epoch
}

// Clear drops every entry and resets the hit and miss counters. Lifetime
// totals are kept.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Purge()
	c.hits = 0
	c.misses = 0
	c.epoch++
	c.floor = c.epoch
	clear(c.invalidated)
}

// Len returns the number of cached entries, tombstones included.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.items.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:     c.items.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,

		TotalHits:   c.totalHits,
		TotalMisses: c.totalMisses,
	}

	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}

	return s
}
