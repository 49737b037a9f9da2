package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/docvault/internal/adapters/driven/embedding/local"
	manifestfile "github.com/verdant-labs/docvault/internal/adapters/driven/manifest/file"
	"github.com/verdant-labs/docvault/internal/adapters/driven/vectorstore/memory"
	"github.com/verdant-labs/docvault/internal/core/domain"
)

func TestPruneRemovesOrphanedChunks(t *testing.T) {
	ctx := context.Background()
	collection := memory.New("test", local.New(64))
	manifests := manifestfile.New(filepath.Join(t.TempDir(), "manifest.json"))

	// Two tracked chunks and one orphan from a since-removed file.
	tracked := []domain.Chunk{
		{Text: "kept one", Source: "/docs/a.txt", Signature: "sig-a", Index: 0, Ext: ".txt"},
		{Text: "kept two", Source: "/docs/a.txt", Signature: "sig-a", Index: 1, Ext: ".txt"},
	}
	orphan := domain.Chunk{Text: "orphan", Source: "/docs/gone.txt", Signature: "sig-old", Index: 0, Ext: ".txt"}

	records := []domain.ChunkRecord{tracked[0].Record(), tracked[1].Record(), orphan.Record()}
	require.NoError(t, collection.Upsert(ctx, records))

	m := domain.NewManifest()
	m.Files["/docs/a.txt"] = domain.ManifestEntry{Signature: "sig-a", Chunks: 2, Ext: ".txt"}
	require.NoError(t, manifests.Save(m))

	removed, err := NewPruner(collection, manifests).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ids, err := collection.IDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{tracked[0].ID(), tracked[1].ID()}, ids)
}

func TestPruneRemovesSupersededVersions(t *testing.T) {
	ctx := context.Background()
	collection := memory.New("test", local.New(64))
	manifests := manifestfile.New(filepath.Join(t.TempDir(), "manifest.json"))

	old := domain.Chunk{Text: "old version", Source: "/docs/a.txt", Signature: "sig-v1", Index: 0, Ext: ".txt"}
	current := domain.Chunk{Text: "new version", Source: "/docs/a.txt", Signature: "sig-v2", Index: 0, Ext: ".txt"}
	require.NoError(t, collection.Upsert(ctx, []domain.ChunkRecord{old.Record(), current.Record()}))

	m := domain.NewManifest()
	m.Files["/docs/a.txt"] = domain.ManifestEntry{Signature: "sig-v2", Chunks: 1, Ext: ".txt"}
	require.NoError(t, manifests.Save(m))

	removed, err := NewPruner(collection, manifests).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ids, err := collection.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{current.ID()}, ids)
}

func TestPruneNothingToRemove(t *testing.T) {
	ctx := context.Background()
	collection := memory.New("test", local.New(64))
	manifests := manifestfile.New(filepath.Join(t.TempDir(), "manifest.json"))

	chunk := domain.Chunk{Text: "tracked", Source: "/docs/a.txt", Signature: "sig", Index: 0, Ext: ".txt"}
	require.NoError(t, collection.Upsert(ctx, []domain.ChunkRecord{chunk.Record()}))

	m := domain.NewManifest()
	m.Files["/docs/a.txt"] = domain.ManifestEntry{Signature: "sig", Chunks: 1, Ext: ".txt"}
	require.NoError(t, manifests.Save(m))

	removed, err := NewPruner(collection, manifests).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPruneEmptyManifestClearsCollection(t *testing.T) {
	ctx := context.Background()
	collection := memory.New("test", local.New(64))
	manifests := manifestfile.New(filepath.Join(t.TempDir(), "manifest.json"))

	chunk := domain.Chunk{Text: "untracked", Source: "/docs/a.txt", Signature: "sig", Index: 0, Ext: ".txt"}
	require.NoError(t, collection.Upsert(ctx, []domain.ChunkRecord{chunk.Record()}))

	removed, err := NewPruner(collection, manifests).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := collection.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
