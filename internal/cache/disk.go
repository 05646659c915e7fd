package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DiskCache persists embedding vectors on disk, one JSON file per key.
// The cache is non-semantic: deleting the directory costs recomputed
// embeddings, never correctness.
type DiskCache struct {
	dir string
}

// NewDiskCache creates a new disk cache rooted at dir.
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

type diskEntry struct {
	Vector []float32 `json:"vector"`
}

// Get retrieves a vector from the disk cache.
func (c *DiskCache) Get(key string) ([]float32, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Unreadable entry, drop it.
		_ = os.Remove(c.path(key))
		return nil, false
	}

	return entry.Vector, true
}

// Set stores a vector in the disk cache.
func (c *DiskCache) Set(key string, vector []float32) error {
	data, err := json.Marshal(diskEntry{Vector: vector})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes a vector from the disk cache.
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

// Clear removes all cached files.
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".cache")
}
