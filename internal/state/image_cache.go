package state

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/kk-code-lab/rpix/internal/imaging"
)

// DefaultCacheSize is the number of decoded images kept when no size is given.
const DefaultCacheSize = 20

// ImageCache maps paths to decoded images with least-recently-used eviction.
// Get and Put both count as use. It is not safe for concurrent use; the
// reducer goroutine owns it.
type ImageCache struct {
	lru       *simplelru.LRU[string, *imaging.Image]
	capacity  int
	evictions int
}

// NewImageCache returns an empty cache holding at most capacity images.
func NewImageCache(capacity int) *ImageCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	c := &ImageCache{capacity: capacity}
	// NewLRU only fails for a non-positive size.
	c.lru, _ = simplelru.NewLRU[string, *imaging.Image](capacity, func(string, *imaging.Image) {
		c.evictions++
	})
	return c
}

// Get returns the image for path and marks it most recently used. A miss
// has no side effect.
func (c *ImageCache) Get(path string) (*imaging.Image, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(path)
}

// Contains reports whether path is cached without touching its recency.
func (c *ImageCache) Contains(path string) bool {
	if c == nil {
		return false
	}
	return c.lru.Contains(path)
}

// Put inserts or replaces the image for path, marks it most recently used and
// evicts the least recently used entry if the cache is over capacity.
func (c *ImageCache) Put(path string, img *imaging.Image) {
	if c == nil || img == nil {
		return
	}
	c.lru.Add(path, img)
}

// Clear drops every entry. Evictions caused by Clear are not counted.
func (c *ImageCache) Clear() {
	if c == nil {
		return
	}
	before := c.evictions
	c.lru.Purge()
	c.evictions = before
}

// Resize changes the capacity, evicting the oldest entries if needed.
func (c *ImageCache) Resize(capacity int) {
	if c == nil || capacity <= 0 {
		return
	}
	c.capacity = capacity
	c.lru.Resize(capacity)
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Cap returns the capacity.
func (c *ImageCache) Cap() int {
	if c == nil {
		return 0
	}
	return c.capacity
}

// Evictions counts entries dropped for capacity since the cache was made.
func (c *ImageCache) Evictions() int {
	if c == nil {
		return 0
	}
	return c.evictions
}

// Paths lists cached paths from least to most recently used.
func (c *ImageCache) Paths() []string {
	if c == nil {
		return nil
	}
	return c.lru.Keys()
}

// SizeBytes sums the pixel buffers of all cached images.
func (c *ImageCache) SizeBytes() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, img := range c.lru.Values() {
		total += int64(img.SizeBytes())
	}
	return total
}
