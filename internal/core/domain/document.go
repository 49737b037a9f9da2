package domain

// Chunk is a bounded unit of normalized text derived from one source file,
// carrying the provenance needed for citation.
type Chunk struct {
	// Text is the normalized chunk content. Never empty after trimming.
	Text string

	// Source is the file identity key (resolved absolute path).
	Source string

	// Signature is the file signature the chunk was derived from.
	Signature string

	// Index is the zero-based position of the chunk within its file.
	Index int

	// Ext is the lowercased file extension, including the dot.
	Ext string

	// IngestedAt is the ingestion time as unix seconds.
	IngestedAt int64
}

// ID returns the stable chunk identifier.
func (c Chunk) ID() string {
	return ChunkID(c.Source, c.Signature, c.Index)
}

// Record converts the chunk into its stored form.
func (c Chunk) Record() ChunkRecord {
	return ChunkRecord{
		ID:       c.ID(),
		Document: c.Text,
		Metadata: map[string]any{
			"source":      c.Source,
			"signature":   c.Signature,
			"chunk":       c.Index,
			"ext":         c.Ext,
			"ingested_at": c.IngestedAt,
		},
	}
}

// ChunkRecord is the stored representation of a chunk in a vector
// collection: stable ID, document text, and citation metadata.
type ChunkRecord struct {
	ID       string
	Document string
	Metadata map[string]any
}

// ManifestEntry records one successfully ingested file.
type ManifestEntry struct {
	// Signature is the file signature at the time of ingestion.
	Signature string `json:"signature"`

	// Chunks is the number of chunks upserted for the file.
	Chunks int `json:"chunks"`

	// Ext is the lowercased file extension.
	Ext string `json:"ext"`
}

// Manifest maps file identity keys to their last successful ingestion.
// It is loaded once at run start, mutated in memory as files complete,
// and written back once at run end. A file missing from the manifest,
// or present with a different signature, is (re)processed.
type Manifest struct {
	Files map[string]ManifestEntry `json:"files"`
}

// NewManifest returns an empty manifest.
func NewManifest() Manifest {
	return Manifest{Files: make(map[string]ManifestEntry)}
}

// Unchanged reports whether the file is recorded with the given signature.
func (m Manifest) Unchanged(fileKey, signature string) bool {
	entry, ok := m.Files[fileKey]
	return ok && entry.Signature == signature
}
