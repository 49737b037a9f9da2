// Package sqlite provides a persistent vector collection backed by a
// SQLite database in the configured persist directory.
//
// Embeddings are stored as little-endian float32 blobs alongside the
// chunk text and citation metadata. Queries are brute-force cosine
// scans, which is fine at the corpus sizes a single-process ingestion
// CLI handles; the schema keeps (collection, id) as the primary key so
// upsert is a plain ON CONFLICT update.
package sqlite

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

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the persist directory.
const DatabaseFile = "chunks.db"

// embedBatchSize bounds how many documents are embedded per call when
// upserting, to respect upstream rate and size limits.
const embedBatchSize = 64

// Ensure Collection implements the interface.
var _ driven.VectorCollection = (*Collection)(nil)

// Collection is a named vector collection in a SQLite database.
type Collection struct {
	db       *sql.DB
	name     string
	path     string
	embedder driven.EmbeddingService
}

// New opens (or creates) the collection under persistDir.
func New(persistDir, name string, embedder driven.EmbeddingService) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrConfiguration)
	}
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if err := os.MkdirAll(persistDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating persist directory: %w", err)
	}

	dbPath := filepath.Join(persistDir, DatabaseFile)

	// WAL mode lets retrieval queries run while an ingest batch writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			document TEXT NOT NULL,
			metadata TEXT NOT NULL,
			embedding BLOB,
			PRIMARY KEY (collection, id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks table: %w", err)
	}

	return &Collection{
		db:       db,
		name:     name,
		path:     dbPath,
		embedder: embedder,
	}, nil
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Path returns the database file path.
func (c *Collection) Path() string {
	return c.path
}

// Upsert embeds the record documents and inserts or overwrites them by
// ID. Embedding calls are bounded to batches of 64 documents.
func (c *Collection) Upsert(ctx context.Context, records []domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	embeddings := make([][]float32, 0, len(records))
	for start := 0; start < len(records); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(records) {
			end = len(records)
		}
		texts := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			texts = append(texts, rec.Document)
		}
		batch, err := c.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch: %w", err)
		}
		embeddings = append(embeddings, batch...)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			document = excluded.document,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		metadataJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.name, rec.ID, rec.Document,
			string(metadataJSON), float32SliceToBytes(embeddings[i])); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query embeds the text and returns the k nearest chunks by cosine
// distance, optionally restricted by a metadata filter.
func (c *Collection) Query(ctx context.Context, text string, k int, filter map[string]any) ([]driven.QueryHit, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, document, metadata, embedding
		FROM chunks WHERE collection = ?
	`, c.name)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.QueryHit
	for rows.Next() {
		var hit driven.QueryHit
		var metadataJSON string
		var embeddingBlob []byte
		if err := rows.Scan(&hit.ID, &hit.Document, &metadataJSON, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &hit.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
		if !matchesFilter(hit.Metadata, filter) {
			continue
		}
		hit.Distance = cosineDistance(queryVec, bytesToFloat32Slice(embeddingBlob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?", c.name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// IDs returns all stored chunk IDs.
func (c *Collection) IDs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE collection = ?", c.name)
	if err != nil {
		return nil, fmt.Errorf("querying ids: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids: %w", err)
	}
	return ids, nil
}

// Delete removes the given chunk IDs. Unknown IDs are ignored.
func (c *Collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		"DELETE FROM chunks WHERE collection = ? AND id = ?")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, c.name, id); err != nil {
			return fmt.Errorf("deleting chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Collection) Close() error {
	return c.db.Close()
}

// matchesFilter reports whether metadata matches every filter entry.
// Numeric values are compared loosely because JSON round-trips integers
// through float64.
func matchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// cosineDistance returns 1 - cosine similarity, clamped to [0, 2].
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 2
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
