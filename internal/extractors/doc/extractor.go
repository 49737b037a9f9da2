// Package doc extracts text from legacy binary Word (.doc) files by
// shelling out to an external converter (antiword by default).
//
// There is no reliable native reader for the legacy format, so the
// converter is a configured capability: the constructor fails when the
// tool is absent, making its availability a configuration-time
// decision instead of a silent empty-text path.
package doc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// DefaultConverter is the converter binary used when none is configured.
const DefaultConverter = "antiword"

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor converts .doc files through an external tool.
type Extractor struct {
	converter string
}

// New creates a .doc extractor using the given converter command.
// Returns domain.ErrExtractorUnavailable when the tool is not on PATH.
func New(converter string) (*Extractor, error) {
	if converter == "" {
		converter = DefaultConverter
	}
	if _, err := exec.LookPath(converter); err != nil {
		return nil, fmt.Errorf("%w: %q not found on PATH (required for .doc files)",
			domain.ErrExtractorUnavailable, converter)
	}
	return &Extractor{converter: converter}, nil
}

// Format returns the document format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatDOC
}

// Extract converts the file and returns its text as one segment.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, e.converter, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("converting doc with %s: %w (%s)",
			e.converter, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return []string{domain.Normalize(stdout.String())}, nil
}
