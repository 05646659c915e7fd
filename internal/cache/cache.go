package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores computed embedding vectors keyed by content hash.
// Entries never expire: an embedding is a pure function of (model,
// content), so a cached vector stays valid until the model changes -
// and a model change produces a different key.
type Cache interface {
	Get(key string) ([]float32, bool)
	Set(key string, vector []float32) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a (model, content) pair. The model
// name is part of the hash so switching embedding models invalidates
// nothing and collides with nothing.
func Key(embedModel, content string) string {
	h := sha256.New()
	h.Write([]byte(embedModel))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return "dataroom:v1:" + hex.EncodeToString(h.Sum(nil))
}
