// Package image extracts text from scanned images (PNG, JPEG, TIFF)
// via OCR, plus a short metadata stamp with the file name and any
// available EXIF keys.
package image

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// maxEXIFKeys caps the number of EXIF keys listed in the stamp.
const maxEXIFKeys = 10

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor OCRs image files. With a disabled OCR engine the segment
// still carries the metadata stamp, so the image is at least findable
// by name.
type Extractor struct {
	ocr driven.OCREngine
}

// New creates a new image extractor with the given OCR engine.
func New(ocr driven.OCREngine) *Extractor {
	return &Extractor{ocr: ocr}
}

// Format returns the document format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatImage
}

// Extract returns a single segment: image-name marker, EXIF key list,
// and the OCR text.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	var ocrText string
	if e.ocr != nil && e.ocr.Available() {
		text, err := e.ocr.Recognize(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("ocr image: %w", err)
		}
		ocrText = text
	}

	stamp := []string{
		fmt.Sprintf("# Image: %s", filepath.Base(path)),
		fmt.Sprintf("# EXIF keys: %s", strings.Join(exifKeys(path), ", ")),
		ocrText,
	}
	return []string{domain.Normalize(strings.Join(stamp, "\n"))}, nil
}

// exifKeys returns up to maxEXIFKeys EXIF field names from the image.
// Images without EXIF data (most PNGs) yield an empty list; EXIF
// problems are never an extraction error.
func exifKeys(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	collector := &keyCollector{}
	_ = meta.Walk(collector)
	if len(collector.keys) > maxEXIFKeys {
		return collector.keys[:maxEXIFKeys]
	}
	return collector.keys
}

// keyCollector implements exif.Walker to gather field names.
type keyCollector struct {
	keys []string
}

func (c *keyCollector) Walk(name exif.FieldName, _ *tiff.Tag) error {
	c.keys = append(c.keys, string(name))
	return nil
}
