// Package extractors provides format-specific text extraction and the
// extension-based dispatch registry used by the ingestion driver.
package extractors

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps document formats to their extractors. Dispatch is by
// file extension through the closed domain.Format set, so a path whose
// extension maps to no registered format is reported unsupported in
// one place.
type Registry struct {
	extractors map[domain.Format]driven.Extractor
}

// NewRegistry creates a registry with the given extractors.
// Registering two extractors for the same format keeps the last one.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{extractors: make(map[domain.Format]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for its format.
func (r *Registry) Register(e driven.Extractor) {
	r.extractors[e.Format()] = e
}

// ForFormat returns the extractor for a format.
func (r *Registry) ForFormat(f domain.Format) (driven.Extractor, bool) {
	e, ok := r.extractors[f]
	return e, ok
}

// ForPath returns the extractor for the file's extension.
func (r *Registry) ForPath(path string) (driven.Extractor, bool) {
	format, ok := domain.FormatForExtension(strings.ToLower(filepath.Ext(path)))
	if !ok {
		return nil, false
	}
	return r.ForFormat(format)
}

// Extensions returns the sorted set of extensions with a registered
// handler. This is the default allowed-extension set when the run
// configuration does not restrict it.
func (r *Registry) Extensions() []string {
	var exts []string
	for format := range r.extractors {
		exts = append(exts, format.Extensions()...)
	}
	sort.Strings(exts)
	return exts
}
