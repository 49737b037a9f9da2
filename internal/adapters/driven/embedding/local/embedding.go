// Package local provides a deterministic offline embedding service.
//
// Texts are tokenized on whitespace after lowercasing; each token is
// hashed into a fixed-dimension bag-of-words vector which is then
// L2-normalized. The vectors are crude but deterministic and cheap,
// which makes them the default for air-gapped runs and for tests:
// identical texts always embed identically, and texts sharing tokens
// score higher cosine similarity than unrelated ones.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// DefaultDimensions is the default vector size.
const DefaultDimensions = 256

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService embeds text by hashed token counts.
type EmbeddingService struct {
	dimensions int
}

// New creates a local embedding service.
// A non-positive dimensions falls back to DefaultDimensions.
func New(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	return s.embed(text), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = s.embed(text)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return "local-hash"
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func (s *EmbeddingService) embed(text string) []float32 {
	vec := make([]float32, s.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(s.dimensions))
		// Second hash bit decides the sign, spreading collisions.
		if (sum>>32)&1 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
