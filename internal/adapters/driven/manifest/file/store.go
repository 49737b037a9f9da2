// Package file provides the JSON file-backed manifest store.
//
// The manifest is small (one entry per tracked file) and has a single
// writer, so it is read once at run start and rewritten wholesale at
// run end as pretty-printed JSON.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
	"github.com/verdant-labs/docvault/internal/logger"
)

// DefaultPath is the manifest location when none is configured.
const DefaultPath = ".ingest/manifest.json"

// Ensure Store implements the interface.
var _ driven.ManifestStore = (*Store)(nil)

// Store persists the manifest as a JSON document.
type Store struct {
	path string
}

// New creates a manifest store at the given path.
// An empty path uses DefaultPath.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the manifest. An absent or malformed file yields an empty
// manifest: corruption means "start fresh", and the next successful
// run writes a valid manifest again.
func (s *Store) Load() domain.Manifest {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("manifest unreadable at %s, starting fresh: %v", s.path, err)
		}
		return domain.NewManifest()
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn("manifest malformed at %s, starting fresh: %v", s.path, err)
		return domain.NewManifest()
	}
	if m.Files == nil {
		m.Files = make(map[string]domain.ManifestEntry)
	}
	return m
}

// Save writes the manifest as pretty-printed JSON, creating parent
// directories as needed.
func (s *Store) Save(m domain.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
