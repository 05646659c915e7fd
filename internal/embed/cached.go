package embed

import (
	"context"

	"github.com/dataroomhq/dataroom/internal/cache"
)

// CachedEmbedder wraps another embedder with a content-hash cache.
// The cache is a performance layer only; on any cache miss or write
// failure the wrapped embedder's result is authoritative.
type CachedEmbedder struct {
	inner Embedder
	cache cache.Cache
}

// NewCachedEmbedder wraps inner with the given cache.
func NewCachedEmbedder(inner Embedder, c cache.Cache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: c}
}

// Embed returns the cached vector when present, otherwise embeds and
// stores the result.
func (e *CachedEmbedder) Embed(ctx context.Context, content string) ([]float32, error) {
	key := cache.Key(e.inner.Model(), content)

	if vec, found := e.cache.Get(key); found {
		return vec, nil
	}

	vec, err := e.inner.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	// Best effort; a failed cache write never fails the embedding.
	_ = e.cache.Set(key, vec)

	return vec, nil
}

// Dimension returns the wrapped embedder's dimension.
func (e *CachedEmbedder) Dimension() int { return e.inner.Dimension() }

// Model returns the wrapped embedder's model name.
func (e *CachedEmbedder) Model() string { return e.inner.Model() }
