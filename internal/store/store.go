// Package store persists (vector, chunk, metadata) triples per
// modality and answers nearest-neighbor queries. Each modality owns
// its own store instance; the two stores never share vector space or
// cross-query each other.
package store

import (
	"context"

	"github.com/dataroomhq/dataroom/internal/model"
)

// VectorStore is the per-modality persistence contract. Stores survive
// process restarts; they are a cache of ingestion, not the source of
// truth, and can always be rebuilt from the raw documents.
type VectorStore interface {
	// Upsert inserts or replaces one embedding record, idempotent on
	// chunk ID. A reader never observes a partially written record.
	Upsert(ctx context.Context, chunk model.Chunk, vector []float32) error

	// UpsertDocument writes all of a document's records in one
	// transaction, after removing any previous records for the same
	// document, so re-ingestion replaces rather than accumulates.
	UpsertDocument(ctx context.Context, doc *model.Document, vectors [][]float32) error

	// Query returns up to k candidates ordered by descending cosine
	// similarity, ties broken by insertion order (first inserted wins).
	Query(ctx context.Context, vector []float32, k int) ([]model.Candidate, error)

	// ListDocuments summarizes every stored document. This is a full
	// store scan; acceptable at dataroom scale.
	ListDocuments(ctx context.Context) ([]model.DocumentSummary, error)

	// DeleteDocument removes all records of a document and reports how
	// many were deleted.
	DeleteDocument(ctx context.Context, filename string) (int, error)

	// Stats reports document and chunk counts.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Stats summarizes a store's contents.
type Stats struct {
	Modality  model.Modality `json:"modality"`
	Documents int            `json:"documents"`
	Chunks    int            `json:"chunks"`
}
