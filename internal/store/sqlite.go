package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dataroomhq/dataroom/internal/model"
)

// SQLiteStore is a VectorStore backed by one SQLite database file.
// Vectors are stored as little-endian float32 blobs and compared by
// brute-force cosine scan; at dataroom scale (thousands of chunks)
// that beats the operational cost of an index server.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	modality model.Modality
	source   model.SourceStore
}

// NewSQLiteStore opens (or creates) the store for one modality under
// dir. WAL mode keeps concurrent ingestion writes and query reads from
// blocking each other.
func NewSQLiteStore(dir string, modality model.Modality, source model.SourceStore) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, "vectors.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{
		db:       db,
		path:     dbPath,
		modality: modality,
		source:   source,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			chunk_id    TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			modality    TEXT NOT NULL,
			locator     INTEGER NOT NULL,
			text        TEXT NOT NULL,
			fields      TEXT,
			vector      BLOB NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Upsert inserts or replaces one embedding record. ON CONFLICT keeps
// the original rowid, which preserves first-inserted-wins tie ordering
// across re-ingestion.
func (s *SQLiteStore) Upsert(ctx context.Context, chunk model.Chunk, vector []float32) error {
	if chunk.Modality != s.modality {
		return fmt.Errorf("chunk %s has modality %s, store holds %s", chunk.ID(), chunk.Modality, s.modality)
	}

	return s.upsertTx(ctx, s.db, chunk, vector)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) upsertTx(ctx context.Context, ex execer, chunk model.Chunk, vector []float32) error {
	var fields any
	if chunk.Fields != nil {
		data, err := json.Marshal(chunk.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		fields = string(data)
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO chunks (chunk_id, document_id, modality, locator, text, fields, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			text   = excluded.text,
			fields = excluded.fields,
			vector = excluded.vector
	`, chunk.ID(), chunk.DocumentID, string(chunk.Modality), chunk.Locator, chunk.Text, fields, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", chunk.ID(), err)
	}

	return nil
}

// UpsertDocument writes a whole document atomically: older records for
// the same filename are dropped first so a shrinking document leaves
// no stale chunks behind.
func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc *model.Document, vectors [][]float32) error {
	if len(doc.Chunks) != len(vectors) {
		return fmt.Errorf("document %s: %d chunks but %d vectors", doc.Filename, len(doc.Chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, doc.Filename); err != nil {
		return fmt.Errorf("clear previous records for %s: %w", doc.Filename, err)
	}

	for i, chunk := range doc.Chunks {
		if err := s.upsertTx(ctx, tx, chunk, vectors[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Query scans every record, scores it against the query vector and
// returns the top k. Ordering is deterministic: descending similarity,
// then ascending rowid (insertion order).
func (s *SQLiteStore) Query(ctx context.Context, vector []float32, k int) ([]model.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, document_id, modality, locator, text, fields, vector
		FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	defer rows.Close()

	type scored struct {
		candidate model.Candidate
		rowid     int64
	}
	var all []scored

	for rows.Next() {
		var (
			rowid      int64
			documentID string
			modality   string
			locator    int
			text       string
			fieldsJSON sql.NullString
			blob       []byte
		)
		if err := rows.Scan(&rowid, &documentID, &modality, &locator, &text, &fieldsJSON, &blob); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		chunk := model.Chunk{
			DocumentID: documentID,
			Modality:   model.Modality(modality),
			Text:       text,
			Locator:    locator,
		}
		if fieldsJSON.Valid {
			if err := json.Unmarshal([]byte(fieldsJSON.String), &chunk.Fields); err != nil {
				return nil, fmt.Errorf("decode fields for %s: %w", chunk.ID(), err)
			}
		}

		stored, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode vector for %s: %w", chunk.ID(), err)
		}

		all = append(all, scored{
			candidate: model.Candidate{
				Chunk: chunk,
				Score: cosine(vector, stored),
				Store: s.source,
			},
			rowid: rowid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].candidate.Score != all[j].candidate.Score {
			return all[i].candidate.Score > all[j].candidate.Score
		}
		return all[i].rowid < all[j].rowid
	})

	if k > len(all) {
		k = len(all)
	}

	candidates := make([]model.Candidate, 0, k)
	for _, sc := range all[:k] {
		candidates = append(candidates, sc.candidate)
	}

	return candidates, nil
}

// ListDocuments summarizes every document in the store.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]model.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, modality, COUNT(*)
		FROM chunks
		GROUP BY document_id, modality
		ORDER BY document_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var summaries []model.DocumentSummary
	for rows.Next() {
		var summary model.DocumentSummary
		var modality string
		if err := rows.Scan(&summary.Filename, &modality, &summary.ChunkCount); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.Modality = model.Modality(modality)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteDocument removes every record of a document.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, filename string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, filename)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", filename, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Stats reports document and chunk counts.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Modality: s.modality}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT document_id), COUNT(*) FROM chunks
	`).Scan(&stats.Documents, &stats.Chunks)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// encodeVector packs a float32 slice into a little-endian blob.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian blob into a float32 slice.
func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(data))
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, nil
}

// cosine computes cosine similarity. Stored and query vectors are
// L2-normalized by the embedder, but the norms are recomputed here so
// the metric stays correct for vectors from other sources.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
