// Package memory provides an in-memory vector collection. It backs
// runs without a persist directory and keeps tests independent of the
// filesystem.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// Ensure Collection implements the interface.
var _ driven.VectorCollection = (*Collection)(nil)

type storedChunk struct {
	document  string
	metadata  map[string]any
	embedding []float32
}

// Collection is a mutex-guarded in-memory vector collection.
type Collection struct {
	mu       sync.RWMutex
	name     string
	chunks   map[string]storedChunk
	embedder driven.EmbeddingService
	closed   bool
}

// New creates an empty in-memory collection.
func New(name string, embedder driven.EmbeddingService) *Collection {
	return &Collection{
		name:     name,
		chunks:   make(map[string]storedChunk),
		embedder: embedder,
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Upsert embeds the record documents and inserts or overwrites them by ID.
func (c *Collection) Upsert(ctx context.Context, records []domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Document
	}
	embeddings, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrCollectionClosed
	}
	for i, rec := range records {
		c.chunks[rec.ID] = storedChunk{
			document:  rec.Document,
			metadata:  rec.Metadata,
			embedding: embeddings[i],
		}
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
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, domain.ErrCollectionClosed
	}

	var hits []driven.QueryHit
	for id, stored := range c.chunks {
		if !matchesFilter(stored.metadata, filter) {
			continue
		}
		hits = append(hits, driven.QueryHit{
			ID:       id,
			Document: stored.document,
			Metadata: stored.metadata,
			Distance: cosineDistance(queryVec, stored.embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, domain.ErrCollectionClosed
	}
	return len(c.chunks), nil
}

// IDs returns all stored chunk IDs.
func (c *Collection) IDs(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, domain.ErrCollectionClosed
	}
	ids := make([]string, 0, len(c.chunks))
	for id := range c.chunks {
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes the given chunk IDs. Unknown IDs are ignored.
func (c *Collection) Delete(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrCollectionClosed
	}
	for _, id := range ids {
		delete(c.chunks, id)
	}
	return nil
}

// Close marks the collection closed; further operations fail.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func matchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

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
