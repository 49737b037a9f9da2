// Package domain contains the core types of the ingestion pipeline:
// file signatures, chunks, the manifest, and the supported document formats.
// It has no dependencies on adapters or external services.
package domain
