// Package rendercache keeps recently rendered chart images in memory,
// LZ4-compressed, under a byte budget with least-recently-used eviction.
package rendercache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pierrec/lz4/v4"
)

// DefaultMaxSize is the byte budget used when none is given (16 MB).
const DefaultMaxSize = 16 << 20

// bytesPerKB normalizes entry sizes for the eviction cost.
const bytesPerKB = 1024.0

// evictionSampleSize is how many entries from the LRU tail are weighed
// against each other when making room.
const evictionSampleSize = 4

// ErrCorrupt is returned when a cached entry fails to decompress.
var ErrCorrupt = errors.New("render cache entry corrupt")

// Key identifies one rendered image. Version is the dataset store version,
// so a live data override invalidates older renders.
type Key struct {
	Format  string
	Mode    string
	Theme   string
	Country string
	Year    int
	Width   int
	Height  int
	Version uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%d/%dx%d/v%d",
		k.Format, k.Mode, k.Theme, k.Country, k.Year, k.Width, k.Height, k.Version)
}

// Cache is safe for concurrent use.
type Cache struct {
	mu          sync.Mutex
	entries     map[Key]*entry
	head        *entry // Most recently used.
	tail        *entry // Least recently used.
	maxSize     int64
	currentSize int64

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key         Key
	data        []byte // LZ4 block, or raw bytes when stored uncompressed.
	rawSize     int
	compressed  bool
	accessCount int64
	prev        *entry
	next        *entry
}

func (e *entry) size() int64 { return int64(len(e.data)) }

// evictionCost is higher for entries worth keeping: often read and small.
func (e *entry) evictionCost() float64 {
	sizeKB := max(float64(e.size())/bytesPerKB, 1)

	return float64(e.accessCount) / sizeKB
}

// New creates a cache holding at most maxSize compressed bytes. A
// non-positive maxSize selects DefaultMaxSize.
func New(maxSize int64) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &Cache{entries: make(map[Key]*entry), maxSize: maxSize}
}

// Get returns a copy of the image stored under key.
func (c *Cache) Get(key Key) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		return nil, false, nil
	}

	c.hits.Add(1)

	e.accessCount++
	c.moveToFront(e)

	out, err := e.decode()
	if err != nil {
		c.remove(e)

		return nil, false, err
	}

	return out, true, nil
}

// Put stores data under key. Images larger than the whole budget are not
// cached.
func (c *Cache) Put(key Key, data []byte) {
	e := encode(key, data)
	if e.size() > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.remove(old)
	}

	for c.currentSize+e.size() > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	c.entries[key] = e
	c.currentSize += e.size()
	c.addToFront(e)
}

// GetOrRender returns the cached image or calls render and caches its
// result. hit reports whether render was skipped.
func (c *Cache) GetOrRender(key Key, render func() ([]byte, error)) (data []byte, hit bool, err error) {
	data, hit, err = c.Get(key)
	if err == nil && hit {
		return data, true, nil
	}

	data, err = render()
	if err != nil {
		return nil, false, err
	}

	c.Put(key, data)

	return data, false, nil
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*entry)
	c.head = nil
	c.tail = nil
	c.currentSize = 0
}

// encode compresses data with LZ4. Incompressible input, such as PNG, is
// kept raw.
func encode(key Key, data []byte) *entry {
	e := &entry{key: key, rawSize: len(data), accessCount: 1}

	buf := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil || n == 0 || n >= len(data) {
		e.data = append([]byte(nil), data...)

		return e
	}

	e.data = buf[:n:n]
	e.compressed = true

	return e
}

func (e *entry) decode() ([]byte, error) {
	if !e.compressed {
		return append([]byte(nil), e.data...), nil
	}

	out := make([]byte, e.rawSize)

	n, err := lz4.UncompressBlock(e.data, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, e.key, err)
	}

	if n != e.rawSize {
		return nil, fmt.Errorf("%w: %s: %d of %d bytes", ErrCorrupt, e.key, n, e.rawSize)
	}

	return out, nil
}

func (c *Cache) moveToFront(e *entry) {
	if e == c.head {
		return
	}

	c.unlink(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *entry) {
	e.prev = nil
	e.next = c.head

	if c.head != nil {
		c.head.prev = e
	}

	c.head = e

	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}

	e.prev = nil
	e.next = nil
}

func (c *Cache) remove(e *entry) {
	c.unlink(e)
	delete(c.entries, e.key)
	c.currentSize -= e.size()
}

// evictLowestCost removes the cheapest of the last few entries: large,
// rarely read images go first.
func (c *Cache) evictLowestCost() {
	victim := c.tail
	lowest := victim.evictionCost()

	for e, n := victim.prev, 1; e != nil && n < evictionSampleSize; e, n = e.prev, n+1 {
		if cost := e.evictionCost(); cost < lowest {
			lowest = cost
			victim = e
		}
	}

	c.remove(victim)
}
