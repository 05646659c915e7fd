package model

import (
	"fmt"
	"time"
)

// Modality is the structural class of a document. It decides how the
// document is chunked and which vector store owns its embeddings.
type Modality string

const (
	// ModalityPaginated covers page-oriented documents (contracts,
	// leases) whose citation unit is the physical page.
	ModalityPaginated Modality = "paginated"

	// ModalityTabular covers row-oriented documents (rent rolls,
	// asset tables) whose citation unit is the data row.
	ModalityTabular Modality = "tabular"
)

// Document represents one ingested file. Identity is the filename;
// documents are never mutated after ingestion.
type Document struct {
	Filename   string    `json:"filename"`
	Modality   Modality  `json:"modality"`
	Chunks     []Chunk   `json:"chunks,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is the smallest citation-addressable unit of a document: one
// page for paginated documents, one row for tabular documents. The
// locator is 1-indexed and stable - it maps 1:1 to a physical unit of
// the source and is never split or merged after creation.
type Chunk struct {
	DocumentID string   `json:"document_id"`      // owning document's filename
	Modality   Modality `json:"modality"`
	Text       string   `json:"text"`             // literal extracted content
	Locator    int      `json:"locator"`          // page number or row index, 1-indexed

	// Fields holds column name/value pairs for tabular rows.
	// Nil for paginated chunks.
	Fields map[string]string `json:"fields,omitempty"`
}

// ID returns the chunk identifier used as the upsert key in the vector
// store: document id plus locator.
func (c Chunk) ID() string {
	switch c.Modality {
	case ModalityTabular:
		return fmt.Sprintf("%s:row:%d", c.DocumentID, c.Locator)
	default:
		return fmt.Sprintf("%s:page:%d", c.DocumentID, c.Locator)
	}
}

// Citation projects the chunk onto its render-only citation.
func (c Chunk) Citation() Citation {
	kind := LocatorPage
	if c.Modality == ModalityTabular {
		kind = LocatorRow
	}
	return Citation{
		Filename: c.DocumentID,
		Kind:     kind,
		Locator:  c.Locator,
	}
}

// LocatorKind distinguishes the two citation locator forms.
type LocatorKind string

const (
	LocatorPage LocatorKind = "page"
	LocatorRow  LocatorKind = "row"
)

// Citation is the (filename, locator) pair rendered alongside an answer
// fragment. Every fragment surfaced in an answer must be traceable to
// exactly one Citation.
type Citation struct {
	Filename string      `json:"filename"`
	Kind     LocatorKind `json:"locator_kind"`
	Locator  int         `json:"locator"`
}

// Tag renders the wire-level citation tag. The format is fixed and
// parsed by downstream consumers: "[<filename> p.<page>]" for
// paginated chunks, "[<filename> row <row>]" for tabular chunks.
func (c Citation) Tag() string {
	if c.Kind == LocatorRow {
		return fmt.Sprintf("[%s row %d]", c.Filename, c.Locator)
	}
	return fmt.Sprintf("[%s p.%d]", c.Filename, c.Locator)
}

// DocumentSummary is the file-listing projection of a stored document.
type DocumentSummary struct {
	Filename   string   `json:"filename"`
	Modality   Modality `json:"modality"`
	ChunkCount int      `json:"chunk_count"`
}
