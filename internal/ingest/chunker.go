package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dataroomhq/dataroom/internal/model"
)

// Chunker splits an uploaded file into citation-addressable chunks:
// one per physical page for paginated documents, one per data row for
// tabular documents. Decoding failures abort the whole document; there
// is no partial success.
type Chunker struct {
	runner CommandRunner
}

// Option configures the chunker.
type Option func(*Chunker)

// WithRunner replaces the external command runner (used by tests to
// stub out pdftotext).
func WithRunner(r CommandRunner) Option {
	return func(c *Chunker) { c.runner = r }
}

// NewChunker creates a new chunker.
func NewChunker(opts ...Option) *Chunker {
	c := &Chunker{runner: execRunner{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkFile reads a file, infers its modality from the extension and
// produces the chunked document. The document's identity is its base
// filename.
func (c *Chunker) ChunkFile(ctx context.Context, path string) (*model.Document, error) {
	filename := filepath.Base(path)

	modality, err := InferModality(filename)
	if err != nil {
		return nil, &model.IngestionError{Filename: filename, Reason: "unsupported file type", Err: err}
	}

	var content []byte
	if filepath.Ext(filename) == ".pdf" {
		text, err := extractPDFText(ctx, c.runner, path)
		if err != nil {
			return nil, &model.IngestionError{Filename: filename, Reason: "pdf text extraction failed", Err: err}
		}
		content = []byte(text)
	} else {
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, &model.IngestionError{Filename: filename, Reason: "read failed", Err: err}
		}
	}

	return c.ChunkContent(filename, content, modality)
}

// ChunkContent chunks already-decoded content under the given
// modality. Exposed separately so callers with in-memory uploads skip
// the filesystem.
func (c *Chunker) ChunkContent(filename string, content []byte, modality model.Modality) (*model.Document, error) {
	doc := &model.Document{
		Filename:   filename,
		Modality:   modality,
		IngestedAt: time.Now().UTC(),
	}

	switch modality {
	case model.ModalityPaginated:
		pages := splitPages(string(content))
		if len(pages) == 0 {
			return nil, &model.IngestionError{Filename: filename, Reason: "no non-empty pages"}
		}
		for _, p := range pages {
			doc.Chunks = append(doc.Chunks, model.Chunk{
				DocumentID: filename,
				Modality:   model.ModalityPaginated,
				Text:       p.Text,
				Locator:    p.Number,
			})
		}

	case model.ModalityTabular:
		rows, err := readRows(bytes.NewReader(content))
		if err != nil {
			return nil, &model.IngestionError{Filename: filename, Reason: "csv decode failed", Err: err}
		}
		if len(rows) == 0 {
			return nil, &model.IngestionError{Filename: filename, Reason: "no data rows"}
		}
		for _, r := range rows {
			doc.Chunks = append(doc.Chunks, model.Chunk{
				DocumentID: filename,
				Modality:   model.ModalityTabular,
				Text:       r.Text,
				Locator:    r.Number,
				Fields:     r.Fields,
			})
		}

	default:
		return nil, &model.IngestionError{Filename: filename, Reason: fmt.Sprintf("unknown modality %q", modality)}
	}

	return doc, nil
}
