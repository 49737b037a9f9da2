package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// DefaultTopK is the default number of chunks returned by a query.
const DefaultTopK = 5

// RetrievedChunk is one ranked retrieval result with its citation.
type RetrievedChunk struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk"`
	Ext        string  `json:"ext"`
	Distance   float64 `json:"distance"`
	ID         string  `json:"id"`
}

// Retriever answers similarity queries against the vector collection.
type Retriever struct {
	collection driven.VectorCollection
}

// NewRetriever creates a retriever over the given collection.
func NewRetriever(collection driven.VectorCollection) *Retriever {
	return &Retriever{collection: collection}
}

// Query returns the k nearest chunks for the text. A non-positive k
// uses DefaultTopK. A non-empty source restricts hits to that file.
func (r *Retriever) Query(ctx context.Context, text string, k int, source string) ([]RetrievedChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is empty")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	var filter map[string]any
	if source != "" {
		filter = map[string]any{"source": source}
	}

	hits, err := r.collection.Query(ctx, text, k, filter)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	out := make([]RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		out = append(out, RetrievedChunk{
			Text:       hit.Document,
			Source:     metadataString(hit.Metadata, "source"),
			ChunkIndex: metadataInt(hit.Metadata, "chunk"),
			Ext:        metadataString(hit.Metadata, "ext"),
			Distance:   hit.Distance,
			ID:         hit.ID,
		})
	}
	return out, nil
}

// Context joins the retrieved chunk texts into one prompt-ready block,
// separated by blank lines.
func Context(chunks []RetrievedChunk) string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n\n")
}

func metadataString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// metadataInt tolerates the numeric types a JSON round-trip produces.
func metadataInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
