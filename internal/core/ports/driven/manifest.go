package driven

import "github.com/verdant-labs/docvault/internal/core/domain"

// ManifestStore persists the ingestion manifest between runs.
// The manifest has a single writer (the ingestion driver), so the
// store only needs whole-document load and save.
type ManifestStore interface {
	// Load reads the manifest, returning an empty manifest when the
	// backing file is absent or malformed.
	Load() domain.Manifest

	// Save writes the manifest back to durable storage.
	Save(m domain.Manifest) error

	// Path returns the backing file path.
	Path() string
}
