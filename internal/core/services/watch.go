package services

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/verdant-labs/docvault/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last
// filesystem event before triggering a re-ingest. Editors produce
// bursts of writes; debouncing coalesces each burst into one run.
const DefaultDebounce = 2 * time.Second

// Watcher re-runs ingestion whenever the watched source trees change.
type Watcher struct {
	ingestor *Ingestor
	sources  []string
	debounce time.Duration
}

// NewWatcher creates a watcher that re-ingests the given sources.
// A non-positive debounce uses DefaultDebounce.
func NewWatcher(ingestor *Ingestor, sources []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{ingestor: ingestor, sources: sources, debounce: debounce}
}

// Run performs one initial ingest, then blocks re-ingesting on change
// until the context is cancelled. New subdirectories are added to the
// watch as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.ingestor.Run(ctx, w.sources); err != nil {
		return fmt.Errorf("initial ingest: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, source := range w.sources {
		if err := addRecursive(watcher, source); err != nil {
			return fmt.Errorf("watching %s: %w", source, err)
		}
	}
	logger.Info("watching %d source(s), debounce %s", len(w.sources), w.debounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.Debug("fs event: %s", event)
			if event.Op.Has(fsnotify.Create) {
				// A new directory needs its own watch entry.
				if err := addRecursive(watcher, event.Name); err != nil {
					logger.Warn("watching new path %s: %v", event.Name, err)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if _, err := w.ingestor.Run(ctx, w.sources); err != nil {
				logger.Error("re-ingest: %v", err)
			}
		}
	}
}

// addRecursive watches path and, if it is a directory, every directory
// under it. Non-directories and vanished paths are ignored.
func addRecursive(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // vanished entries are expected mid-walk
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(p); err != nil {
			logger.Warn("watching %s: %v", p, err)
		}
		return nil
	})
}
