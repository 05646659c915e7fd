package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps embedding vectors in process memory.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache. Entries are kept until
// the process exits; there is no cleanup pass to run.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a vector from the cache.
func (c *MemoryCache) Get(key string) ([]float32, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]float32), true
	}
	return nil, false
}

// Set stores a vector in the cache.
func (c *MemoryCache) Set(key string, vector []float32) error {
	c.cache.Set(key, vector, gocache.NoExpiration)
	return nil
}

// Delete removes a vector from the cache.
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all vectors from the cache.
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
