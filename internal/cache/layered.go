package cache

// LayeredCache combines the memory and disk caches: memory answers the
// hot path within a process, disk survives restarts.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered cache with disk storage at diskDir.
func NewLayeredCache(diskDir string) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(),
		disk:   NewDiskCache(diskDir),
	}
}

// Get checks memory first, then disk. Disk hits are promoted to memory.
func (c *LayeredCache) Get(key string) ([]float32, bool) {
	if vec, found := c.memory.Get(key); found {
		return vec, true
	}

	if vec, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, vec)
		return vec, true
	}

	return nil, false
}

// Set stores a vector in both layers.
func (c *LayeredCache) Set(key string, vector []float32) error {
	if err := c.memory.Set(key, vector); err != nil {
		return err
	}
	return c.disk.Set(key, vector)
}

// Delete removes a vector from both layers.
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all vectors from both layers.
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
