// Package pipeline wires the dataroom components together and exposes
// the three external operations: ingest, ask and list.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/dataroomhq/dataroom/internal/answer"
	"github.com/dataroomhq/dataroom/internal/cache"
	"github.com/dataroomhq/dataroom/internal/embed"
	"github.com/dataroomhq/dataroom/internal/ingest"
	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/retrieve"
	"github.com/dataroomhq/dataroom/internal/store"
	"github.com/dataroomhq/dataroom/internal/worker"
)

// Pipeline owns the store handles and the single shared embedder. It
// is created at startup and closed on shutdown; nothing here is
// reachable through ambient globals.
type Pipeline struct {
	config    *model.Config
	chunker   *ingest.Chunker
	embedder  embed.Embedder
	docs      store.VectorStore
	tables    store.VectorStore
	retriever *retrieve.Retriever
	composer  answer.Composer
	loop      *answer.Loop
	limiter   *worker.Limiter
}

// New builds a pipeline from configuration. The embedder and composer
// are built only when an embedding API key is configured; local-only
// operations (list, stats, remove) work without one, and Ingest / Ask
// refuse cleanly. Pass requireLLM=true for invocations that will call
// Ask, so a misconfigured composer fails at startup instead of
// mid-turn.
func New(cfg *model.Config, requireLLM bool) (*Pipeline, error) {
	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)

	docs, err := store.NewSQLiteStore(cfg.Data.DocumentStoreDir(), model.ModalityPaginated, model.StoreDocuments)
	if err != nil {
		return nil, fmt.Errorf("document store: %w", err)
	}

	tables, err := store.NewSQLiteStore(cfg.Data.TableStoreDir(), model.ModalityTabular, model.StoreTables)
	if err != nil {
		docs.Close()
		return nil, fmt.Errorf("table store: %w", err)
	}

	p := &Pipeline{
		config:  cfg,
		chunker: ingest.NewChunker(),
		docs:    docs,
		tables:  tables,
		limiter: limiter,
	}

	if cfg.Embedding.APIKey != "" {
		base, err := embed.NewOpenAIEmbedder(cfg.Embedding, limiter)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("embedder: %w", err)
		}

		// One embedder instance serves ingestion and query paths;
		// vectors from separately configured embedders are not
		// comparable.
		var embedder embed.Embedder = base
		if cfg.Embedding.CacheEnabled {
			embedder = embed.NewCachedEmbedder(base, cache.NewLayeredCache(cfg.Embedding.CacheDir))
		}
		p.embedder = embedder
		p.retriever = retrieve.NewRetriever(embedder, docs, tables)
	}

	if requireLLM {
		if p.retriever == nil {
			p.Close()
			return nil, fmt.Errorf("no embedding API key configured")
		}
		composer, err := answer.NewComposer(cfg.LLM, limiter)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("composer: %w", err)
		}
		p.composer = composer
		p.loop = answer.NewLoop(composer, p.retriever, cfg.LLM.SystemPrompt)
	}

	return p, nil
}

// Close releases the store handles.
func (p *Pipeline) Close() error {
	var firstErr error
	if err := p.docs.Close(); err != nil {
		firstErr = err
	}
	if err := p.tables.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// IngestResult reports a successful ingestion.
type IngestResult struct {
	DocumentID string         `json:"document_id"`
	Modality   model.Modality `json:"modality"`
	ChunkCount int            `json:"chunk_count"`
}

// Ingest chunks one file, embeds every chunk and writes the document
// atomically into its modality store. Failure anywhere aborts the
// whole document: either all chunks land or none do.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*IngestResult, error) {
	if p.embedder == nil {
		return nil, fmt.Errorf("no embedding API key configured")
	}

	doc, err := p.chunker.ChunkFile(ctx, path)
	if err != nil {
		return nil, err
	}

	p.verbosef("chunked %s: %d %s chunks\n", doc.Filename, len(doc.Chunks), doc.Modality)

	vectors, err := p.embedChunks(ctx, doc.Chunks)
	if err != nil {
		return nil, &model.IngestionError{Filename: doc.Filename, Reason: "embedding failed", Err: err}
	}

	target := p.storeFor(doc.Modality)
	if err := target.UpsertDocument(ctx, doc, vectors); err != nil {
		return nil, &model.IngestionError{Filename: doc.Filename, Reason: "store write failed", Err: err}
	}

	return &IngestResult{
		DocumentID: doc.Filename,
		Modality:   doc.Modality,
		ChunkCount: len(doc.Chunks),
	}, nil
}

// embedChunks runs the chunk embeddings on the worker pool so a large
// document does not issue every API call at once.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []model.Chunk) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Queue sized to the chunk count: every job is submitted before
	// Wait drains, so a smaller buffer would block Submit forever.
	pool := worker.NewPool(p.config.Concurrency.EmbedWorkers, len(chunks))
	pool.Start()

	for i, chunk := range chunks {
		pool.Submit(&embedJob{index: i, text: chunk.Text, embedder: p.embedder})
	}

	vectors := make([][]float32, len(chunks))
	for _, res := range pool.Wait() {
		er := res.(*embedResult)
		if er.err != nil {
			return nil, fmt.Errorf("chunk %d: %w", er.index+1, er.err)
		}
		vectors[er.index] = er.vector
	}

	return vectors, nil
}

// Ask runs one reasoning-loop turn. kPDF and kCSV are the per-store
// top-K budgets; negative values fall back to the configured defaults.
func (p *Pipeline) Ask(ctx context.Context, question string, kPDF, kCSV int) (*model.Turn, error) {
	if p.loop == nil {
		return nil, fmt.Errorf("no LLM configured")
	}
	if kPDF < 0 {
		kPDF = p.config.Retrieval.KPDF
	}
	if kCSV < 0 {
		kCSV = p.config.Retrieval.KCSV
	}
	return p.loop.Run(ctx, question, kPDF, kCSV)
}

// ListDocuments merges the two stores' document summaries, sorted by
// filename.
func (p *Pipeline) ListDocuments(ctx context.Context) ([]model.DocumentSummary, error) {
	docSummaries, err := p.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("document store: %w", err)
	}
	tableSummaries, err := p.tables.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("table store: %w", err)
	}

	all := append(docSummaries, tableSummaries...)
	sort.Slice(all, func(i, j int) bool { return all[i].Filename < all[j].Filename })
	return all, nil
}

// Stats reports per-store counts.
func (p *Pipeline) Stats(ctx context.Context) ([]store.Stats, error) {
	docStats, err := p.docs.Stats(ctx)
	if err != nil {
		return nil, err
	}
	tableStats, err := p.tables.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return []store.Stats{docStats, tableStats}, nil
}

// Remove deletes a document from whichever store holds it and reports
// the number of chunks removed.
func (p *Pipeline) Remove(ctx context.Context, filename string) (int, error) {
	modality, err := ingest.InferModality(filename)
	if err != nil {
		return 0, err
	}
	return p.storeFor(modality).DeleteDocument(ctx, filename)
}

func (p *Pipeline) storeFor(m model.Modality) store.VectorStore {
	if m == model.ModalityTabular {
		return p.tables
	}
	return p.docs
}

func (p *Pipeline) verbosef(format string, args ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// embedJob embeds one chunk's text on the worker pool.
type embedJob struct {
	index    int
	text     string
	embedder embed.Embedder
}

func (j *embedJob) Execute(ctx context.Context) worker.Result {
	vec, err := j.embedder.Embed(ctx, j.text)
	return &embedResult{index: j.index, vector: vec, err: err}
}

type embedResult struct {
	index  int
	vector []float32
	err    error
}

func (r *embedResult) GetError() error { return r.err }
