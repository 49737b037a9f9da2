package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDeterministic(t *testing.T) {
	s := New(0)

	a, err := s.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	b, err := s.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimensions)
}

func TestEmbedNormalized(t *testing.T) {
	s := New(64)

	vec, err := s.Embed(context.Background(), "some words to hash")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestEmbedCaseInsensitive(t *testing.T) {
	s := New(0)

	a, err := s.Embed(context.Background(), "Hello World")
	require.NoError(t, err)
	b, err := s.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSharedTokensScoreCloser(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	query, err := s.Embed(ctx, "database indexing performance")
	require.NoError(t, err)
	related, err := s.Embed(ctx, "indexing a database for performance")
	require.NoError(t, err)
	unrelated, err := s.Embed(ctx, "banana smoothie recipe ideas")
	require.NoError(t, err)

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestEmbedBatch(t *testing.T) {
	s := New(0)

	vecs, err := s.EmbedBatch(context.Background(), []string{"one", "two", "one"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, vecs[0], vecs[2])
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestEmptyTextEmbedsToZeroVector(t *testing.T) {
	s := New(0)

	vec, err := s.Embed(context.Background(), "   ")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
