package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor is registered for a file's
	// extension. Files hitting this are skipped, never failed.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmptyDocument indicates extraction or chunking produced no usable text.
	// Treated as a skip so the file is retried on a later run.
	ErrEmptyDocument = errors.New("empty document")

	// ErrConfiguration indicates a missing or invalid configuration value.
	// Fatal for the whole run, raised before any file is processed.
	ErrConfiguration = errors.New("configuration error")

	// ErrExtractorUnavailable indicates a required external conversion tool
	// (OCR engine, legacy .doc converter) is not installed.
	ErrExtractorUnavailable = errors.New("extractor unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCollectionClosed indicates the vector collection has been closed.
	ErrCollectionClosed = errors.New("collection closed")
)
