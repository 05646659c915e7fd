package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/store"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, content string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

func (f *fakeEmbedder) Dimension() int { return len(f.vector) }
func (f *fakeEmbedder) Model() string  { return "fake" }

type fakeStore struct {
	hits []model.Candidate
	err  error
	gotK int
}

func (f *fakeStore) Query(ctx context.Context, vector []float32, k int) ([]model.Candidate, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeStore) Upsert(ctx context.Context, chunk model.Chunk, vector []float32) error {
	return nil
}

func (f *fakeStore) UpsertDocument(ctx context.Context, doc *model.Document, vectors [][]float32) error {
	return nil
}

func (f *fakeStore) ListDocuments(ctx context.Context) ([]model.DocumentSummary, error) {
	return nil, nil
}

func (f *fakeStore) DeleteDocument(ctx context.Context, filename string) (int, error) {
	return 0, nil
}

func (f *fakeStore) Stats(ctx context.Context) (store.Stats, error) { return store.Stats{}, nil }
func (f *fakeStore) Close() error                                   { return nil }

func pageCandidate(doc string, page int, text string, score float64) model.Candidate {
	return model.Candidate{
		Chunk: model.Chunk{
			DocumentID: doc,
			Modality:   model.ModalityPaginated,
			Text:       text,
			Locator:    page,
		},
		Score: score,
		Store: model.StoreDocuments,
	}
}

func rowCandidate(doc string, row int, text string, score float64) model.Candidate {
	return model.Candidate{
		Chunk: model.Chunk{
			DocumentID: doc,
			Modality:   model.ModalityTabular,
			Text:       text,
			Locator:    row,
		},
		Score: score,
		Store: model.StoreTables,
	}
}

func TestRetriever_MergePrecedence(t *testing.T) {
	docs := &fakeStore{hits: []model.Candidate{
		pageCandidate("lease.pdf", 4, "escalation clause", 0.9),
		pageCandidate("lease.pdf", 7, "renewal option", 0.4),
	}}
	tables := &fakeStore{hits: []model.Candidate{
		rowCandidate("rents.csv", 2, "asset: A, rent: 100", 0.95),
	}}

	r := NewRetriever(&fakeEmbedder{vector: []float32{1, 0}}, docs, tables)
	merged, err := r.Search(context.Background(), "escalation", 5, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(merged) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(merged))
	}
	// Document candidates come first even when a table row scores higher.
	if merged[0].Store != model.StoreDocuments || merged[1].Store != model.StoreDocuments {
		t.Errorf("document candidates not first: %v, %v", merged[0].Store, merged[1].Store)
	}
	if merged[2].Store != model.StoreTables {
		t.Errorf("table candidate not last: %v", merged[2].Store)
	}
	if merged[0].Chunk.Locator != 4 || merged[1].Chunk.Locator != 7 {
		t.Errorf("document rank order not preserved: %d, %d", merged[0].Chunk.Locator, merged[1].Chunk.Locator)
	}
}

func TestRetriever_PerStoreLimits(t *testing.T) {
	docs := &fakeStore{}
	tables := &fakeStore{}
	r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, docs, tables)

	if _, err := r.Search(context.Background(), "q", 3, 7); err != nil {
		t.Fatal(err)
	}
	if docs.gotK != 3 {
		t.Errorf("document store queried with k=%d, want 3", docs.gotK)
	}
	if tables.gotK != 7 {
		t.Errorf("table store queried with k=%d, want 7", tables.gotK)
	}
}

func TestRetriever_EmbedsQueryOnce(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{1}}
	r := NewRetriever(emb, &fakeStore{}, &fakeStore{})

	if _, err := r.Search(context.Background(), "q", 5, 5); err != nil {
		t.Fatal(err)
	}
	if emb.calls != 1 {
		t.Errorf("query embedded %d times, want 1", emb.calls)
	}
}

func TestRetriever_EmptyResultIsNotError(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, &fakeStore{}, &fakeStore{})

	merged, err := r.Search(context.Background(), "nothing matches", 5, 5)
	if err != nil {
		t.Fatalf("empty retrieval must not error: %v", err)
	}
	if len(merged) != 0 {
		t.Errorf("expected no candidates, got %d", len(merged))
	}
}

func TestRetriever_StoreFailure(t *testing.T) {
	tests := []struct {
		name      string
		docs      *fakeStore
		tables    *fakeStore
		wantStore model.SourceStore
	}{
		{
			name:      "document store down",
			docs:      &fakeStore{err: errors.New("disk gone")},
			tables:    &fakeStore{hits: []model.Candidate{rowCandidate("r.csv", 1, "x", 0.5)}},
			wantStore: model.StoreDocuments,
		},
		{
			name:      "table store down",
			docs:      &fakeStore{hits: []model.Candidate{pageCandidate("d.pdf", 1, "x", 0.5)}},
			tables:    &fakeStore{err: errors.New("disk gone")},
			wantStore: model.StoreTables,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, tt.docs, tt.tables)
			merged, err := r.Search(context.Background(), "q", 5, 5)
			if err == nil {
				t.Fatal("expected retrieval error")
			}
			if merged != nil {
				t.Error("partial results returned alongside error")
			}

			var rerr *model.RetrievalError
			if !errors.As(err, &rerr) {
				t.Fatalf("error is %T, want *model.RetrievalError", err)
			}
			if rerr.Store != tt.wantStore {
				t.Errorf("error names store %q, want %q", rerr.Store, tt.wantStore)
			}
		})
	}
}

func TestRetriever_EmbedFailure(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("service unavailable")}
	r := NewRetriever(emb, &fakeStore{}, &fakeStore{})

	_, err := r.Search(context.Background(), "q", 5, 5)
	var rerr *model.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("error is %T, want *model.RetrievalError", err)
	}
	if rerr.Store != "" {
		t.Errorf("embedding failure should not name a store, got %q", rerr.Store)
	}
}

func TestAssemble(t *testing.T) {
	candidates := []model.Candidate{
		pageCandidate("lease.pdf", 4, "Base rent escalates 3% annually.", 0.9),
		rowCandidate("rents.csv", 2, "asset: A, rent: 100", 0.8),
	}

	got := Assemble(candidates)
	want := "[lease.pdf p.4]\nBase rent escalates 3% annually.\n\n---\n\n[rents.csv row 2]\nasset: A, rent: 100"
	if got != want {
		t.Errorf("Assemble mismatch:\ngot:  %q\nwant: %q", got, want)
	}

	if !strings.HasPrefix(got, "[lease.pdf p.4]") {
		t.Error("first block must lead with its citation tag")
	}
}

func TestAssemble_Empty(t *testing.T) {
	if got := Assemble(nil); got != "" {
		t.Errorf("Assemble(nil) = %q, want empty", got)
	}
}
