// Package pdf extracts embedded text from PDF files, one segment per
// page, with an OCR fallback for pages that carry no machine-readable
// text (scanned documents).
package pdf

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads PDF files page by page.
type Extractor struct {
	ocr driven.OCREngine
}

// New creates a PDF extractor. The OCR engine is consulted for pages
// whose embedded text is empty after normalization; a disabled engine
// leaves such pages empty, which is not an error.
func New(ocr driven.OCREngine) *Extractor {
	return &Extractor{ocr: ocr}
}

// Format returns the document format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatPDF
}

// Extract returns one normalized segment per page, in page order.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	segments := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := pageText(reader, i)
		if domain.Normalize(text) == "" && e.ocr != nil && e.ocr.Available() {
			// Image-only page: rasterize and OCR. The OCR result may
			// itself be empty when the page genuinely has no text.
			ocrText, err := e.ocr.RecognizePDFPage(ctx, path, i)
			if err != nil {
				return nil, fmt.Errorf("ocr page %d: %w", i, err)
			}
			text = ocrText
		}
		segments = append(segments, domain.Normalize(text))
	}
	return segments, nil
}

// pageText extracts the embedded text of one page, tolerating the
// malformed content streams some producers emit.
func pageText(reader *pdf.Reader, page int) string {
	defer func() {
		// The pdf library panics on some malformed pages; treat those
		// pages as empty so the OCR fallback gets a chance.
		_ = recover()
	}()

	p := reader.Page(page)
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
