package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/docvault/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docvault.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMinimalConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
primary:
  collection: notes
sources:
  - ./docs
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "notes", cfg.Primary.Collection)
	assert.Equal(t, []string{"./docs"}, cfg.Sources)
	assert.Equal(t, DefaultChunkTokens, cfg.ChunkTokens)
	assert.Equal(t, DefaultChunkMode, cfg.ChunkMode)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultManifest, cfg.Manifest)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultEmbedder, cfg.Embedder.Type)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.Embedder.APIKeyEnv)
	assert.Equal(t, DefaultOCRDPI, cfg.OCR.DPI)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
primary:
  persist_directory: ./index
  collection: research
sources:
  - /data/papers
  - /data/notes
extensions: [".pdf", ".txt"]
chunk_tokens: 400
chunk_mode: window
chunk_size: 1200
chunk_overlap: 150
manifest: state/manifest.json
workers: 4
embedder:
  type: openai
  model: text-embedding-3-large
  api_key_env: MY_KEY
  batch_size: 32
  rate_limit: 2
ocr:
  enabled: true
  tesseract_cmd: /opt/tesseract
  dpi: 300
doc:
  converter_cmd: /usr/bin/antiword
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./index", cfg.Primary.PersistDirectory)
	assert.Equal(t, []string{"/data/papers", "/data/notes"}, cfg.Sources)
	assert.Equal(t, []string{".pdf", ".txt"}, cfg.Extensions)
	assert.Equal(t, 400, cfg.ChunkTokens)
	assert.Equal(t, "window", cfg.ChunkMode)
	assert.Equal(t, 1200, cfg.ChunkSize)
	assert.Equal(t, 150, cfg.ChunkOverlap)
	assert.Equal(t, "state/manifest.json", cfg.Manifest)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "MY_KEY", cfg.Embedder.APIKeyEnv)
	assert.True(t, cfg.OCR.Enabled)
	assert.Equal(t, "/opt/tesseract", cfg.OCR.TesseractCmd)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, "/usr/bin/antiword", cfg.Doc.ConverterCmd)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "primary: [not: valid")
	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadRequiresSources(t *testing.T) {
	path := writeConfig(t, `
primary:
  collection: notes
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadRequiresCollection(t *testing.T) {
	path := writeConfig(t, `
sources: [./docs]
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadRejectsUnknownChunkMode(t *testing.T) {
	path := writeConfig(t, `
primary:
  collection: notes
sources: [./docs]
chunk_mode: zigzag
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadRejectsUnknownEmbedderType(t *testing.T) {
	path := writeConfig(t, `
primary:
  collection: notes
sources: [./docs]
embedder:
  type: quantum
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAPIKeyResolvesFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
primary:
  collection: notes
sources: [./docs]
embedder:
  api_key_env: DOCVAULT_TEST_KEY
`)
	t.Setenv("DOCVAULT_TEST_KEY", "sk-test-123")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", cfg.APIKey())
}
