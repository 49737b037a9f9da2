package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported document format.
// The set is closed: every extractor handles exactly one Format, and
// extension dispatch goes through FormatForExtension so unsupported
// extensions are rejected in one place.
type Format int

// Supported document formats.
const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDOCX
	FormatDOC
	FormatSpreadsheet
	FormatImage
	FormatText
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatDOC:
		return "doc"
	case FormatSpreadsheet:
		return "spreadsheet"
	case FormatImage:
		return "image"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// formatExtensions maps each format to the file extensions it covers.
var formatExtensions = map[Format][]string{
	FormatPDF:         {".pdf"},
	FormatDOCX:        {".docx"},
	FormatDOC:         {".doc"},
	FormatSpreadsheet: {".xlsx", ".xls"},
	FormatImage:       {".png", ".jpg", ".jpeg", ".tif", ".tiff"},
	FormatText:        {".txt", ".md"},
}

// extensionFormats is the inverse mapping (extension -> format).
var extensionFormats map[string]Format

//nolint:gochecknoinits // Package-level static mapping initialization
func init() {
	extensionFormats = make(map[string]Format)
	for format, exts := range formatExtensions {
		for _, ext := range exts {
			extensionFormats[ext] = format
		}
	}
}

// FormatForExtension returns the format for a file extension
// (including the leading dot, case-insensitive).
func FormatForExtension(ext string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(ext)]
	return f, ok
}

// FormatForPath returns the format for a file path based on its extension.
func FormatForPath(path string) (Format, bool) {
	return FormatForExtension(filepath.Ext(path))
}

// Extensions returns the file extensions covered by the format.
func (f Format) Extensions() []string {
	exts, ok := formatExtensions[f]
	if !ok {
		return nil
	}
	// Return a copy to prevent modification
	result := make([]string, len(exts))
	copy(result, exts)
	return result
}
