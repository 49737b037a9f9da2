// Package services contains the driving application services: the
// ingestion pipeline, retrieval, index pruning, and directory watching.
package services

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/verdant-labs/docvault/internal/chunker"
	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
	"github.com/verdant-labs/docvault/internal/logger"
)

// ChunkMode selects how extracted segments become chunks.
type ChunkMode string

const (
	// ChunkModeSegments packs whole segments under a token budget.
	ChunkModeSegments ChunkMode = "segments"

	// ChunkModeWindow slides a fixed-size character window with overlap
	// over the concatenated text.
	ChunkModeWindow ChunkMode = "window"
)

// Report summarizes one ingestion run.
type Report struct {
	Collection       string `json:"collection"`
	AddedFiles       int    `json:"added_files"`
	SkippedFiles     int    `json:"skipped_files"`
	FailedFiles      int    `json:"failed_files"`
	TotalTracked     int    `json:"total_tracked"`
	PersistDirectory string `json:"persist_directory"`
}

// Ingestor walks source paths, extracts and chunks changed files, and
// upserts their chunks into the vector collection. Unchanged files are
// detected through the manifest and skipped without touching their
// bytes. Per-file failures are counted and logged but never abort the
// run.
type Ingestor struct {
	registry   driven.ExtractorRegistry
	collection driven.VectorCollection
	manifests  driven.ManifestStore
	chunker    *chunker.Chunker

	mode          ChunkMode
	windowSize    int
	windowOverlap int
	workers       int
	extensions    map[string]bool
	persistDir    string
}

// IngestorOption configures the ingestor.
type IngestorOption func(*Ingestor)

// WithChunkMode sets the chunking mode.
func WithChunkMode(mode ChunkMode) IngestorOption {
	return func(i *Ingestor) {
		if mode != "" {
			i.mode = mode
		}
	}
}

// WithWindow sets the window-mode chunk size and overlap in characters.
func WithWindow(size, overlap int) IngestorOption {
	return func(i *Ingestor) {
		i.windowSize = size
		i.windowOverlap = overlap
	}
}

// WithWorkers sets the number of files processed concurrently.
func WithWorkers(n int) IngestorOption {
	return func(i *Ingestor) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithExtensions restricts ingestion to the given extensions
// (lowercased, with dot). An empty list means every extension the
// registry handles.
func WithExtensions(exts []string) IngestorOption {
	return func(i *Ingestor) {
		if len(exts) == 0 {
			return
		}
		i.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			i.extensions[strings.ToLower(ext)] = true
		}
	}
}

// WithPersistDirectory records the persist directory for the report.
func WithPersistDirectory(dir string) IngestorOption {
	return func(i *Ingestor) {
		i.persistDir = dir
	}
}

// NewIngestor creates an ingestor over the given ports.
func NewIngestor(
	registry driven.ExtractorRegistry,
	collection driven.VectorCollection,
	manifests driven.ManifestStore,
	ch *chunker.Chunker,
	opts ...IngestorOption,
) *Ingestor {
	ing := &Ingestor{
		registry:      registry,
		collection:    collection,
		manifests:     manifests,
		chunker:       ch,
		mode:          ChunkModeSegments,
		windowSize:    chunker.DefaultWindowSize,
		windowOverlap: chunker.DefaultWindowOverlap,
		workers:       1,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// fileOutcome is what processing a single file produced.
type fileOutcome int

const (
	outcomeSkipped fileOutcome = iota
	outcomeAdded
	outcomeFailed
)

// Run ingests every eligible file under the given sources, in order,
// and returns the run report. The manifest is loaded once up front and
// persisted once at the end; a failed manifest write is the only
// per-run fatal error after startup.
func (i *Ingestor) Run(ctx context.Context, sources []string) (Report, error) {
	runID := uuid.NewString()[:8]
	logger.Info("ingest run %s: %d source(s), %d worker(s)", runID, len(sources), i.workers)

	manifest := i.manifests.Load()

	files, skippedWalk := i.collectFiles(sources)
	logger.Debug("ingest run %s: %d candidate file(s)", runID, len(files))

	var mu sync.Mutex
	report := Report{
		Collection:       i.collection.Name(),
		SkippedFiles:     skippedWalk,
		PersistDirectory: i.persistDir,
	}

	process := func(path string) {
		outcome, key, entry := i.processFile(ctx, path, &manifest, &mu)
		mu.Lock()
		switch outcome {
		case outcomeAdded:
			manifest.Files[key] = entry
			report.AddedFiles++
		case outcomeSkipped:
			report.SkippedFiles++
		case outcomeFailed:
			report.FailedFiles++
		}
		mu.Unlock()
	}

	if i.workers > 1 {
		pool, err := ants.NewPool(i.workers)
		if err != nil {
			return Report{}, fmt.Errorf("creating worker pool: %w", err)
		}
		defer pool.Release()

		var wg sync.WaitGroup
		for _, path := range files {
			path := path
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				process(path)
			}); err != nil {
				wg.Done()
				logger.Error("submitting %s: %v", path, err)
				mu.Lock()
				report.FailedFiles++
				mu.Unlock()
			}
		}
		wg.Wait()
	} else {
		for _, path := range files {
			process(path)
		}
	}

	report.TotalTracked = len(manifest.Files)

	if err := i.manifests.Save(manifest); err != nil {
		return Report{}, fmt.Errorf("saving manifest: %w", err)
	}

	logger.Info("ingest run %s: added=%d skipped=%d failed=%d tracked=%d",
		runID, report.AddedFiles, report.SkippedFiles, report.FailedFiles, report.TotalTracked)
	return report, nil
}

// collectFiles walks the sources in order and returns the candidate
// files plus the number of files skipped for having an extension the
// run does not handle. Missing sources are logged and skipped.
func (i *Ingestor) collectFiles(sources []string) (files []string, skipped int) {
	for _, source := range sources {
		err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("walking %s: %v", path, err)
				return nil //nolint:nilerr // a bad entry must not abort the walk
			}
			if d.IsDir() {
				return nil
			}
			if i.allowed(path) {
				files = append(files, path)
			} else {
				logger.Debug("skipping %s: unhandled extension", path)
				skipped++
			}
			return nil
		})
		if err != nil {
			logger.Warn("walking source %s: %v", source, err)
		}
	}
	sort.Strings(files)
	return files, skipped
}

func (i *Ingestor) allowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if i.extensions != nil {
		return i.extensions[ext]
	}
	_, ok := i.registry.ForPath(path)
	return ok
}

// processFile runs the pipeline for one file. The manifest is only read
// under mu; the returned entry is written by the caller.
func (i *Ingestor) processFile(ctx context.Context, path string, manifest *domain.Manifest, mu *sync.Mutex) (fileOutcome, string, domain.ManifestEntry) {
	key, sig, err := domain.FileSignature(path)
	if err != nil {
		logger.Error("fingerprinting %s: %v", path, err)
		return outcomeFailed, "", domain.ManifestEntry{}
	}

	mu.Lock()
	unchanged := manifest.Unchanged(key, sig)
	mu.Unlock()
	if unchanged {
		logger.Debug("skipping %s: unchanged", key)
		return outcomeSkipped, "", domain.ManifestEntry{}
	}

	extractor, ok := i.registry.ForPath(path)
	if !ok {
		logger.Debug("skipping %s: %v", key, domain.ErrUnsupportedFormat)
		return outcomeSkipped, "", domain.ManifestEntry{}
	}

	segments, err := extractor.Extract(ctx, key)
	if err != nil {
		logger.Error("extracting %s: %v", key, err)
		return outcomeFailed, "", domain.ManifestEntry{}
	}

	chunks := i.chunkSegments(segments)
	if len(chunks) == 0 {
		logger.Debug("skipping %s: no text recovered", key)
		return outcomeSkipped, "", domain.ManifestEntry{}
	}

	ext := strings.ToLower(filepath.Ext(key))
	now := time.Now().Unix()
	records := make([]domain.ChunkRecord, 0, len(chunks))
	for idx, text := range chunks {
		records = append(records, domain.Chunk{
			Text:       text,
			Source:     key,
			Signature:  sig,
			Index:      idx,
			Ext:        ext,
			IngestedAt: now,
		}.Record())
	}

	if err := i.collection.Upsert(ctx, records); err != nil {
		logger.Error("indexing %s: %v", key, err)
		return outcomeFailed, "", domain.ManifestEntry{}
	}

	logger.Info("ingested %s: %d chunk(s)", key, len(chunks))
	return outcomeAdded, key, domain.ManifestEntry{Signature: sig, Chunks: len(chunks), Ext: ext}
}

func (i *Ingestor) chunkSegments(segments []string) []string {
	if i.mode == ChunkModeWindow {
		joined := domain.Normalize(strings.Join(segments, " "))
		if joined == "" {
			return nil
		}
		return chunker.SplitWindow(joined, i.windowSize, i.windowOverlap)
	}
	return i.chunker.Split(segments)
}
