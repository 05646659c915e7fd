// Package retrieve answers an embedded question from the two modality
// stores and formats the merged candidates for prompt assembly.
package retrieve

import (
	"context"
	"sync"

	"github.com/dataroomhq/dataroom/internal/embed"
	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/store"
)

// SearchTool is the single opaque retrieval capability exposed to the
// reasoning loop. Keeping the merge policy behind this interface means
// a hybrid or reranking retriever can replace the pure-vector one
// without touching the loop.
type SearchTool interface {
	Search(ctx context.Context, query string, kPDF, kCSV int) ([]model.Candidate, error)
}

// Retriever queries the document store and the table store
// independently and merges the results. Scores from the two stores are
// not assumed comparable, so the merge is fixed-precedence
// concatenation - document-store candidates first, then table-store
// candidates, each list keeping its internal rank order - rather than
// a re-scored global ranking.
type Retriever struct {
	embedder embed.Embedder
	docs     store.VectorStore
	tables   store.VectorStore
}

// NewRetriever wires the shared embedder to the two stores. The
// embedder must be the same instance used at ingestion time.
func NewRetriever(embedder embed.Embedder, docs, tables store.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, docs: docs, tables: tables}
}

// Search embeds the question once and queries both stores in parallel.
// An empty result is not an error: it means no content, which callers
// must be able to tell apart from a broken store. If either store
// fails, the whole retrieval fails with a RetrievalError naming it.
func (r *Retriever) Search(ctx context.Context, query string, kPDF, kCSV int) ([]model.Candidate, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &model.RetrievalError{Store: "", Err: err}
	}

	var (
		wg        sync.WaitGroup
		docHits   []model.Candidate
		tableHits []model.Candidate
		docErr    error
		tableErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		docHits, docErr = r.docs.Query(ctx, vector, kPDF)
	}()
	go func() {
		defer wg.Done()
		tableHits, tableErr = r.tables.Query(ctx, vector, kCSV)
	}()
	wg.Wait()

	// Both queries must succeed before any merge happens.
	if docErr != nil {
		return nil, &model.RetrievalError{Store: model.StoreDocuments, Err: docErr}
	}
	if tableErr != nil {
		return nil, &model.RetrievalError{Store: model.StoreTables, Err: tableErr}
	}

	merged := make([]model.Candidate, 0, len(docHits)+len(tableHits))
	merged = append(merged, docHits...)
	merged = append(merged, tableHits...)
	return merged, nil
}
