// Package filtercache implements the bounded, process-wide LRU cache that
// memoizes image-filter evaluation results: an intrusive doubly-linked
// list for O(1) LRU reordering plus a hash map for O(1) lookup, evicting
// by byte budget rather than entry count.
package filtercache

import (
	"container/list"
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/vgraster/internal/geom"
)

// CacheKey fingerprints one filter evaluation: the node, the transform and
// clip it was evaluated under, and the source image it consumed (if any).
type CacheKey struct {
	NodeID     uint32
	CTM        geom.Matrix
	ClipBounds geom.ClipRect
	SrcImageID uint32
	SrcSubset  geom.ClipRect
}

// hash returns a deterministic FNV-1a mix of every field, used as the map
// key (CacheKey itself isn't comparable-friendly for a map key because
// geom.Matrix holds floats whose bit patterns we want to mix explicitly,
// not rely on struct equality semantics for).
func (k CacheKey) hash() uint64 {
	h := fnv.New64a()
	writeUint32(h, k.NodeID)
	writeFloat64(h, k.CTM.A)
	writeFloat64(h, k.CTM.B)
	writeFloat64(h, k.CTM.C)
	writeFloat64(h, k.CTM.D)
	writeFloat64(h, k.CTM.E)
	writeFloat64(h, k.CTM.F)
	writeRect(h, k.ClipBounds)
	writeUint32(h, k.SrcImageID)
	writeRect(h, k.SrcSubset)
	return h.Sum64()
}

func writeUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

func writeFloat64(h hash.Hash64, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	h.Write(buf[:])
}

func writeRect(h hash.Hash64, r geom.ClipRect) {
	writeUint32(h, uint32(r.Left))
	writeUint32(h, uint32(r.Top))
	writeUint32(h, uint32(r.Right))
	writeUint32(h, uint32(r.Bottom))
}

// CacheEntry is one memoized filter result: the output image, its offset
// in the coordinate system of the evaluation's clipBounds, and the
// entry's declared size in bytes for budget accounting.
type CacheEntry struct {
	Key    CacheKey
	Image  any // *filter.RasterImage, kept as any to avoid an import cycle
	Offset geom.Point
	Bytes  int64
}

type node struct {
	key   uint64
	entry CacheEntry
	elem  *list.Element
}

// Cache is a byte-budgeted, thread-safe LRU cache of filter results. All
// operations take a single mutex for their entire duration; Get mutates
// LRU order, so it needs exclusive access too.
type Cache struct {
	mu           sync.Mutex
	entries      map[uint64]*node
	lru          *list.List // front = most recently used
	currentBytes int64
	maxBytes     int64

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewCache constructs a cache with the given byte budget.
func NewCache(maxBytes int64) *Cache {
	return &Cache{
		entries:  make(map[uint64]*node),
		lru:      list.New(),
		maxBytes: maxBytes,
	}
}

// Get looks up key, marking it most-recently-used on a hit.
func (c *Cache) Get(key CacheKey) (CacheEntry, bool) {
	h := key.hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[h]
	if !ok {
		c.misses++
		return CacheEntry{}, false
	}
	c.lru.MoveToFront(n.elem)
	c.hits++
	return n.entry, true
}

// Set inserts or replaces key's entry, then evicts least-recently-used
// entries until currentBytes <= maxBytes — except the entry just
// inserted is never evicted, even if it alone exceeds the budget.
func (c *Cache) Set(key CacheKey, image any, offset geom.Point, sizeBytes int64) {
	h := key.hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[h]; ok {
		c.currentBytes -= existing.entry.Bytes
		c.lru.Remove(existing.elem)
		delete(c.entries, h)
	}

	entry := CacheEntry{Key: key, Image: image, Offset: offset, Bytes: sizeBytes}
	n := &node{key: h, entry: entry}
	n.elem = c.lru.PushFront(n)
	c.entries[h] = n
	c.currentBytes += sizeBytes

	for c.currentBytes > c.maxBytes && c.lru.Len() > 1 {
		c.evictOldestLocked()
	}
}

// evictOldestLocked removes the least-recently-used entry, even when it is
// the only one. Caller must hold c.mu. Set keeps what it just inserted by
// calling this only while more than one entry remains.
func (c *Cache) evictOldestLocked() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	n := elem.Value.(*node)
	c.lru.Remove(elem)
	delete(c.entries, n.key)
	c.currentBytes -= n.entry.Bytes
	c.evictions++
}

// Purge evicts every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := uint64(len(c.entries))
	c.entries = make(map[uint64]*node)
	c.lru.Init()
	c.currentBytes = 0
	c.evictions += evicted
}

// PurgeByKeys evicts exactly the listed keys, for those present.
func (c *Cache) PurgeByKeys(keys []CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		h := key.hash()
		n, ok := c.entries[h]
		if !ok {
			continue
		}
		c.lru.Remove(n.elem)
		delete(c.entries, h)
		c.currentBytes -= n.entry.Bytes
		c.evictions++
	}
}

// CurrentBytes returns the sum of all live entries' declared sizes.
func (c *Cache) CurrentBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentBytes
}

// MaxBytes returns the configured byte budget.
func (c *Cache) MaxBytes() int64 {
	return c.maxBytes
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports hit/miss/eviction counters alongside current occupancy.
type Stats struct {
	Entries   int
	Bytes     int64
	MaxBytes  int64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   len(c.entries),
		Bytes:     c.currentBytes,
		MaxBytes:  c.maxBytes,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// DumpStats renders a human-readable snapshot of the cache's counters,
// grouping entry/byte/hit counts per p's locale (thousands separators
// under language.English, and so on). Pass nil to use an English printer.
func (c *Cache) DumpStats(p *message.Printer) string {
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	s := c.Stats()
	return p.Sprintf("filtercache: %d entries, %d/%d bytes, %d hits, %d misses, %d evictions",
		s.Entries, s.Bytes, s.MaxBytes, s.Hits, s.Misses, s.Evictions)
}

// Default byte budgets. Default always sizes the process-wide cache with
// DefaultCacheBytes; SmallCacheBytes is a smaller budget that Default
// never selects on its own. Both are vars so callers can change them
// before first use of the default cache.
var (
	SmallCacheBytes   int64 = 2 * 1024 * 1024
	DefaultCacheBytes int64 = 128 * 1024 * 1024
)

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default lazily constructs the process-wide default cache on first call.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = NewCache(DefaultCacheBytes)
	})
	return defaultCache
}
