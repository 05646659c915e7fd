// Package embed maps chunk text and incoming questions to fixed-length
// vectors. Ingestion and query paths must share one Embedder instance:
// vectors from two differently configured embedders are not comparable
// and mixing them silently degrades recall.
package embed

import "context"

// Embedder converts text into a fixed-dimension vector. Implementations
// must be deterministic for identical input.
type Embedder interface {
	// Embed returns the vector for the given content.
	Embed(ctx context.Context, content string) ([]float32, error)

	// Dimension returns the length of vectors produced by Embed.
	Dimension() int

	// Model identifies the underlying embedding model.
	Model() string
}
