package driven

import (
	"context"

	"github.com/verdant-labs/docvault/internal/core/domain"
)

// Extractor converts one document format into plain-text segments.
// Segments are ordered (one per PDF page, one per spreadsheet sheet,
// one combined segment per DOCX) and each is normalized before return.
type Extractor interface {
	// Format returns the document format this extractor handles.
	Format() domain.Format

	// Extract reads the file at path and returns its text segments.
	// An empty slice (or all-empty segments) is a valid result for a
	// file with no recoverable text; it is not an error.
	Extract(ctx context.Context, path string) ([]string, error)
}

// ExtractorRegistry dispatches file paths to extractors by extension.
type ExtractorRegistry interface {
	// ForPath returns the extractor for the file's extension,
	// or false if the extension has no registered handler.
	ForPath(path string) (Extractor, bool)

	// Extensions returns all extensions with a registered handler.
	Extensions() []string
}
