// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): extractors, embedding services, vector
// collections, the manifest store and the OCR engine.
package driven
