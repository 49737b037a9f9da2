package driven

import "context"

// OCREngine recovers text from images. It is a capability: whether OCR
// is available is decided at configuration time, and the disabled
// implementation returns empty text rather than erroring, so an image
// or image-only PDF page with no engine simply yields no content.
type OCREngine interface {
	// Recognize runs OCR over the image file at path.
	// An empty result is valid: OCR finding nothing is not an error.
	Recognize(ctx context.Context, imagePath string) (string, error)

	// RecognizePDFPage rasterizes one page (1-based) of the PDF at
	// path and runs OCR over it.
	RecognizePDFPage(ctx context.Context, pdfPath string, page int) (string, error)

	// Available reports whether the engine can actually run OCR.
	Available() bool
}
