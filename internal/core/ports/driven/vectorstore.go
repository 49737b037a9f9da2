package driven

import (
	"context"

	"github.com/verdant-labs/docvault/internal/core/domain"
)

// VectorCollection is a content-addressable similarity index keyed by
// stable chunk IDs. Upsert has create-or-update semantics: an ID that
// already exists is overwritten, not duplicated. The ingestion driver
// only ever upserts; deletion is reserved for explicit maintenance
// (prune, collection clear).
type VectorCollection interface {
	// Name returns the collection name.
	Name() string

	// Upsert inserts or overwrites the given records by ID.
	Upsert(ctx context.Context, records []domain.ChunkRecord) error

	// Query embeds the text and returns the k nearest chunks.
	// A non-nil filter restricts hits to records whose metadata
	// matches every filter entry.
	Query(ctx context.Context, text string, k int, filter map[string]any) ([]QueryHit, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// IDs returns all stored chunk IDs.
	IDs(ctx context.Context) ([]string, error)

	// Delete removes the given chunk IDs. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Close releases resources.
	Close() error
}

// QueryHit is one ranked similarity search result.
type QueryHit struct {
	// ID is the matched chunk ID.
	ID string

	// Document is the stored chunk text.
	Document string

	// Metadata is the stored citation metadata.
	Metadata map[string]any

	// Distance is the cosine distance to the query (0 = identical).
	Distance float64
}
