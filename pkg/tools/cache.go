package tools

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of read results kept by NewCache(0).
const DefaultCacheSize = 512

// Cache memoizes read_blocks items. Keys carry the overlay version so that a
// read taken before a mutation is never served after it.
type Cache struct {
	entries *lru.Cache[string, cachedRead]
}

type cachedRead struct {
	item ReadItem
	// covered lists every block id the item exposes (the block and its context).
	covered []string
}

// NewCache creates a bounded cache. size <= 0 selects DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, cachedRead](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Cache{entries: entries}
}

// CacheKey builds the key for one block read.
func CacheKey(id string, withContext bool, version int) string {
	ctx := 0
	if withContext {
		ctx = 1
	}
	return fmt.Sprintf("%s|%d|%d", id, ctx, version)
}

func (c *Cache) get(key string) (cachedRead, bool) {
	return c.entries.Get(key)
}

func (c *Cache) set(key string, v cachedRead) {
	c.entries.Add(key, v)
}

// Invalidate drops every cached read.
func (c *Cache) Invalidate() {
	c.entries.Purge()
}

// Len returns the number of cached reads.
func (c *Cache) Len() int {
	return c.entries.Len()
}
