package services

import (
	"context"
	"fmt"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
	"github.com/verdant-labs/docvault/internal/logger"
)

// Pruner reconciles the vector collection against the manifest.
// Ingestion never deletes, so chunks belonging to removed files, or to
// superseded versions of changed files, accumulate until a prune run
// removes them.
type Pruner struct {
	collection driven.VectorCollection
	manifests  driven.ManifestStore
}

// NewPruner creates a pruner over the given ports.
func NewPruner(collection driven.VectorCollection, manifests driven.ManifestStore) *Pruner {
	return &Pruner{collection: collection, manifests: manifests}
}

// Run deletes every stored chunk whose ID is not derivable from the
// current manifest, and returns the number removed. Chunk IDs are pure
// functions of (file key, signature, index), so the manifest's entries
// enumerate exactly the IDs that should exist.
func (p *Pruner) Run(ctx context.Context) (int, error) {
	manifest := p.manifests.Load()

	valid := make(map[string]bool)
	for key, entry := range manifest.Files {
		for idx := 0; idx < entry.Chunks; idx++ {
			valid[domain.ChunkID(key, entry.Signature, idx)] = true
		}
	}

	stored, err := p.collection.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing chunk ids: %w", err)
	}

	var orphans []string
	for _, id := range stored {
		if !valid[id] {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		logger.Debug("prune: nothing to remove (%d chunk(s) tracked)", len(stored))
		return 0, nil
	}

	if err := p.collection.Delete(ctx, orphans); err != nil {
		return 0, fmt.Errorf("deleting orphaned chunks: %w", err)
	}

	logger.Info("prune: removed %d orphaned chunk(s)", len(orphans))
	return len(orphans), nil
}
