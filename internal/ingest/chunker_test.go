package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dataroomhq/dataroom/internal/model"
)

// mockRunner stands in for pdftotext.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestInferModality(t *testing.T) {
	tests := []struct {
		filename string
		want     model.Modality
		wantErr  bool
	}{
		{"contract.pdf", model.ModalityPaginated, false},
		{"contract.PDF", model.ModalityPaginated, false},
		{"notes.txt", model.ModalityPaginated, false},
		{"assets.csv", model.ModalityTabular, false},
		{"slides.pptx", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		got, err := InferModality(tt.filename)
		if tt.wantErr {
			if err == nil {
				t.Errorf("InferModality(%q): expected error, got %q", tt.filename, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("InferModality(%q): unexpected error %v", tt.filename, err)
			continue
		}
		if got != tt.want {
			t.Errorf("InferModality(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestChunkContent_Paginated(t *testing.T) {
	content := "Page one: rent escalation of 3% annually.\fPage two is boilerplate.\fPage three."

	doc, err := NewChunker().ChunkContent("contract.txt", []byte(content), model.ModalityPaginated)
	if err != nil {
		t.Fatalf("ChunkContent failed: %v", err)
	}

	if len(doc.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(doc.Chunks))
	}

	// Locators are a strictly increasing sequence starting at 1.
	for i, chunk := range doc.Chunks {
		if chunk.Locator != i+1 {
			t.Errorf("chunk %d: locator = %d, want %d", i, chunk.Locator, i+1)
		}
		if chunk.Modality != model.ModalityPaginated {
			t.Errorf("chunk %d: modality = %q", i, chunk.Modality)
		}
		if chunk.Text == "" {
			t.Errorf("chunk %d: empty text stored", i)
		}
	}

	if doc.Chunks[0].ID() != "contract.txt:page:1" {
		t.Errorf("unexpected chunk id %q", doc.Chunks[0].ID())
	}
}

func TestChunkContent_Paginated_BlankPagesDropped(t *testing.T) {
	content := "First page.\f   \n  \fThird page."

	doc, err := NewChunker().ChunkContent("lease.txt", []byte(content), model.ModalityPaginated)
	if err != nil {
		t.Fatalf("ChunkContent failed: %v", err)
	}

	if len(doc.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(doc.Chunks))
	}

	// The blank page keeps its physical position: the page after it is
	// still page 3.
	if doc.Chunks[0].Locator != 1 || doc.Chunks[1].Locator != 3 {
		t.Errorf("locators = %d, %d; want 1, 3", doc.Chunks[0].Locator, doc.Chunks[1].Locator)
	}
}

func TestChunkContent_Paginated_AllBlank(t *testing.T) {
	_, err := NewChunker().ChunkContent("empty.txt", []byte("  \f \n"), model.ModalityPaginated)

	var ingErr *model.IngestionError
	if !errors.As(err, &ingErr) {
		t.Fatalf("expected IngestionError, got %v", err)
	}
	if ingErr.Filename != "empty.txt" {
		t.Errorf("error names %q, want empty.txt", ingErr.Filename)
	}
}

func TestChunkContent_Tabular(t *testing.T) {
	content := "asset,noi\nA,100\nB,200\n"

	doc, err := NewChunker().ChunkContent("assets.csv", []byte(content), model.ModalityTabular)
	if err != nil {
		t.Fatalf("ChunkContent failed: %v", err)
	}

	// One chunk per data row, header excluded.
	if len(doc.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(doc.Chunks))
	}

	first := doc.Chunks[0]
	if first.Locator != 1 {
		t.Errorf("first row locator = %d, want 1", first.Locator)
	}
	if first.Text != "asset: A, noi: 100" {
		t.Errorf("row text = %q", first.Text)
	}
	if first.Fields["noi"] != "100" {
		t.Errorf("fields[noi] = %q, want 100", first.Fields["noi"])
	}

	second := doc.Chunks[1]
	if second.ID() != "assets.csv:row:2" {
		t.Errorf("unexpected chunk id %q", second.ID())
	}
	if got := second.Citation().Tag(); got != "[assets.csv row 2]" {
		t.Errorf("citation tag = %q", got)
	}
}

func TestChunkContent_Tabular_EmptyRowsDropped(t *testing.T) {
	content := "a,b\n1,2\n,\n3,4\n"

	doc, err := NewChunker().ChunkContent("t.csv", []byte(content), model.ModalityTabular)
	if err != nil {
		t.Fatalf("ChunkContent failed: %v", err)
	}

	if len(doc.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(doc.Chunks))
	}
	// The empty row keeps its physical row number reserved.
	if doc.Chunks[1].Locator != 3 {
		t.Errorf("second chunk locator = %d, want 3", doc.Chunks[1].Locator)
	}
}

func TestChunkContent_Tabular_Malformed(t *testing.T) {
	// Unbalanced quote makes the CSV undecodable.
	content := "a,b\n\"broken,2\n3,4\n"

	_, err := NewChunker().ChunkContent("bad.csv", []byte(content), model.ModalityTabular)

	var ingErr *model.IngestionError
	if !errors.As(err, &ingErr) {
		t.Fatalf("expected IngestionError, got %v", err)
	}
}

func TestChunkContent_Tabular_HeaderOnly(t *testing.T) {
	_, err := NewChunker().ChunkContent("hdr.csv", []byte("a,b\n"), model.ModalityTabular)
	if err == nil {
		t.Fatal("expected error for header-only CSV")
	}
}

func TestChunkFile_PDFViaRunner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &mockRunner{output: []byte("extracted page one\fextracted page two")}
	chunker := NewChunker(WithRunner(runner))

	doc, err := chunker.ChunkFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ChunkFile failed: %v", err)
	}

	if doc.Filename != "contract.pdf" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if len(doc.Chunks) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(doc.Chunks))
	}
}

func TestChunkFile_UnsupportedType(t *testing.T) {
	_, err := NewChunker().ChunkFile(context.Background(), "deck.pptx")

	var ingErr *model.IngestionError
	if !errors.As(err, &ingErr) {
		t.Fatalf("expected IngestionError, got %v", err)
	}
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType in chain, got %v", err)
	}
}
