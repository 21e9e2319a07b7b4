package ogimage

import (
	"encoding/json"
	"sync"

	"github.com/starford/pinfall/internal/checksum"
)

// Cache stores rendered images by key.
type Cache interface {
	// GetOrPopulate returns the cached value for key, calling fill and
	// storing its result on a miss. Errors from fill are not cached.
	GetOrPopulate(key string, fill func() ([]byte, error)) ([]byte, error)
}

// Key identifies a card by its content.
func Key(c Card) string {
	data, _ := json.Marshal(c)
	return checksum.Sum(data)
}

// MemoryCache keeps images for the life of the process.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

// GetOrPopulate implements Cache.
func (c *MemoryCache) GetOrPopulate(key string, fill func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	v, ok := c.items[key]
	c.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := fill()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.items[key] = v
	c.mu.Unlock()
	return v, nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// NopCache always calls fill.
type NopCache struct{}

// GetOrPopulate implements Cache.
func (NopCache) GetOrPopulate(_ string, fill func() ([]byte, error)) ([]byte, error) {
	return fill()
}
