// Package disabled provides the no-op OCR engine used when OCR is not
// configured. Image-only PDF pages and scanned images then yield empty
// text, which the pipeline treats as a skip, not an error.
package disabled

import (
	"context"

	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Engine recognizes nothing.
type Engine struct{}

// New creates the disabled engine.
func New() *Engine {
	return &Engine{}
}

// Available reports that OCR cannot run.
func (e *Engine) Available() bool {
	return false
}

// Recognize returns empty text.
func (e *Engine) Recognize(_ context.Context, _ string) (string, error) {
	return "", nil
}

// RecognizePDFPage returns empty text.
func (e *Engine) RecognizePDFPage(_ context.Context, _ string, _ int) (string, error) {
	return "", nil
}
