// Package config loads and validates the YAML run configuration.
//
// A `.env` file next to the working directory is loaded first so the
// embedder API key can be referenced by environment variable name
// rather than written into the config file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/verdant-labs/docvault/internal/core/domain"
)

// Default values applied after parsing.
const (
	DefaultChunkTokens  = 800
	DefaultChunkMode    = "segments"
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultManifest     = ".ingest/manifest.json"
	DefaultWorkers      = 1
	DefaultEmbedder     = "local"
	DefaultAPIKeyEnv    = "OPENAI_API_KEY"
	DefaultOCRDPI       = 200
)

// Primary identifies the vector collection and its storage location.
type Primary struct {
	// PersistDirectory is where the vector database lives. Empty means
	// an in-memory collection that does not survive the process.
	PersistDirectory string `yaml:"persist_directory"`

	// Collection is the collection name (required).
	Collection string `yaml:"collection"`
}

// Embedder configures the embedding backend.
type Embedder struct {
	// Type selects the backend: "local" (default) or "openai".
	Type string `yaml:"type"`

	// Model is the embedding model name (openai only).
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// BaseURL overrides the API endpoint for compatible providers.
	BaseURL string `yaml:"base_url"`

	// BatchSize caps texts per embedding request.
	BatchSize int `yaml:"batch_size"`

	// RateLimit caps embedding requests per second.
	RateLimit float64 `yaml:"rate_limit"`
}

// OCR configures optical character recognition for images and
// image-only PDF pages.
type OCR struct {
	Enabled      bool   `yaml:"enabled"`
	TesseractCmd string `yaml:"tesseract_cmd"`
	PdftoppmCmd  string `yaml:"pdftoppm_cmd"`
	DPI          int    `yaml:"dpi"`
}

// Doc configures legacy .doc extraction.
type Doc struct {
	// ConverterCmd is the external doc-to-text converter binary.
	ConverterCmd string `yaml:"converter_cmd"`
}

// Config is the full run configuration.
type Config struct {
	Primary Primary `yaml:"primary"`

	// Sources are the files and directories to ingest, in order.
	Sources []string `yaml:"sources"`

	// Extensions restricts ingestion to these extensions (with dot).
	// Empty means every extension with a registered extractor.
	Extensions []string `yaml:"extensions"`

	// ChunkTokens is the segment-mode chunk budget in tokens.
	ChunkTokens int `yaml:"chunk_tokens"`

	// ChunkMode is "segments" or "window".
	ChunkMode string `yaml:"chunk_mode"`

	// ChunkSize and ChunkOverlap are window-mode parameters in characters.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// Manifest is the manifest file path.
	Manifest string `yaml:"manifest"`

	// Workers is the number of files processed concurrently.
	Workers int `yaml:"workers"`

	Embedder Embedder `yaml:"embedder"`
	OCR      OCR      `yaml:"ocr"`
	Doc      Doc      `yaml:"doc"`
}

// Load reads, parses, validates and defaults the configuration at
// path. Every failure here is a configuration error: the run must not
// start on a broken config.
func Load(path string) (*Config, error) {
	// Missing .env is fine; an API key may come from the real environment.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config %s: %v", domain.ErrConfiguration, path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config %s: %v", domain.ErrConfiguration, path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ChunkTokens <= 0 {
		c.ChunkTokens = DefaultChunkTokens
	}
	if c.ChunkMode == "" {
		c.ChunkMode = DefaultChunkMode
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = DefaultChunkOverlap
	}
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Embedder.Type == "" {
		c.Embedder.Type = DefaultEmbedder
	}
	if c.Embedder.APIKeyEnv == "" {
		c.Embedder.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.OCR.DPI <= 0 {
		c.OCR.DPI = DefaultOCRDPI
	}
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("%w: at least one source is required", domain.ErrConfiguration)
	}
	if c.Primary.Collection == "" {
		return fmt.Errorf("%w: primary.collection is required", domain.ErrConfiguration)
	}
	switch c.ChunkMode {
	case "segments", "window":
	default:
		return fmt.Errorf("%w: chunk_mode must be \"segments\" or \"window\", got %q",
			domain.ErrConfiguration, c.ChunkMode)
	}
	switch c.Embedder.Type {
	case "local", "openai":
	default:
		return fmt.Errorf("%w: embedder.type must be \"local\" or \"openai\", got %q",
			domain.ErrConfiguration, c.Embedder.Type)
	}
	return nil
}

// APIKey resolves the embedder API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.Embedder.APIKeyEnv)
}
