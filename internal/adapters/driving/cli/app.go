package cli

import (
	"fmt"
	"strings"

	"github.com/verdant-labs/docvault/internal/adapters/driven/embedding/local"
	openaiembed "github.com/verdant-labs/docvault/internal/adapters/driven/embedding/openai"
	manifestfile "github.com/verdant-labs/docvault/internal/adapters/driven/manifest/file"
	ocrdisabled "github.com/verdant-labs/docvault/internal/adapters/driven/ocr/disabled"
	"github.com/verdant-labs/docvault/internal/adapters/driven/ocr/tesseract"
	"github.com/verdant-labs/docvault/internal/adapters/driven/vectorstore/memory"
	sqlitestore "github.com/verdant-labs/docvault/internal/adapters/driven/vectorstore/sqlite"
	"github.com/verdant-labs/docvault/internal/chunker"
	"github.com/verdant-labs/docvault/internal/config"
	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
	"github.com/verdant-labs/docvault/internal/core/services"
	"github.com/verdant-labs/docvault/internal/extractors"
	docext "github.com/verdant-labs/docvault/internal/extractors/doc"
	"github.com/verdant-labs/docvault/internal/extractors/docx"
	imageext "github.com/verdant-labs/docvault/internal/extractors/image"
	pdfext "github.com/verdant-labs/docvault/internal/extractors/pdf"
	"github.com/verdant-labs/docvault/internal/extractors/plaintext"
	"github.com/verdant-labs/docvault/internal/extractors/spreadsheet"
	"github.com/verdant-labs/docvault/internal/logger"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg        *config.Config
	registry   *extractors.Registry
	collection driven.VectorCollection
	embedder   driven.EmbeddingService
	manifests  driven.ManifestStore
	ingestor   *services.Ingestor
}

// buildApp wires the configured adapters together. Capability
// decisions (OCR tools, .doc converter) are made here, once: a format
// the configuration explicitly asks for must be servable or the run
// fails before touching any file.
func buildApp(cfg *config.Config) (*app, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	collection, err := buildCollection(cfg, embedder)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		collection.Close() //nolint:errcheck
		return nil, err
	}

	manifests := manifestfile.New(cfg.Manifest)

	ingestor := services.NewIngestor(
		registry, collection, manifests,
		chunker.New(chunker.WithMaxTokens(cfg.ChunkTokens)),
		services.WithChunkMode(services.ChunkMode(cfg.ChunkMode)),
		services.WithWindow(cfg.ChunkSize, cfg.ChunkOverlap),
		services.WithWorkers(cfg.Workers),
		services.WithExtensions(cfg.Extensions),
		services.WithPersistDirectory(cfg.Primary.PersistDirectory),
	)

	return &app{
		cfg:        cfg,
		registry:   registry,
		collection: collection,
		embedder:   embedder,
		manifests:  manifests,
		ingestor:   ingestor,
	}, nil
}

func (a *app) close() {
	if err := a.collection.Close(); err != nil {
		logger.Warn("closing collection: %v", err)
	}
	if err := a.embedder.Close(); err != nil {
		logger.Warn("closing embedder: %v", err)
	}
}

func buildEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedder.Type {
	case "openai":
		return openaiembed.New(openaiembed.Config{
			APIKey:            cfg.APIKey(),
			BaseURL:           cfg.Embedder.BaseURL,
			Model:             cfg.Embedder.Model,
			BatchSize:         cfg.Embedder.BatchSize,
			RequestsPerSecond: cfg.Embedder.RateLimit,
		})
	default:
		return local.New(0), nil
	}
}

func buildCollection(cfg *config.Config, embedder driven.EmbeddingService) (driven.VectorCollection, error) {
	if cfg.Primary.PersistDirectory == "" {
		logger.Debug("no persist directory configured, using in-memory collection")
		return memory.New(cfg.Primary.Collection, embedder), nil
	}
	return sqlitestore.New(cfg.Primary.PersistDirectory, cfg.Primary.Collection, embedder)
}

// buildRegistry registers an extractor per servable format. Formats
// whose external tools are missing are silently left out unless the
// configuration names one of their extensions explicitly, which turns
// the missing tool into a fatal configuration error.
func buildRegistry(cfg *config.Config) (*extractors.Registry, error) {
	ocr, err := buildOCR(cfg)
	if err != nil {
		return nil, err
	}

	registry := extractors.NewRegistry(
		plaintext.New(),
		docx.New(),
		spreadsheet.New(),
		pdfext.New(ocr),
	)

	if ocr.Available() {
		registry.Register(imageext.New(ocr))
	} else if requested := requestedFormat(cfg, domain.FormatImage); requested != "" {
		return nil, fmt.Errorf("%w: extension %q requires OCR but ocr.enabled is false",
			domain.ErrConfiguration, requested)
	}

	if docExtractor, err := docext.New(cfg.Doc.ConverterCmd); err == nil {
		registry.Register(docExtractor)
	} else if requested := requestedFormat(cfg, domain.FormatDOC); requested != "" {
		return nil, fmt.Errorf("%w: extension %q requested but converter unavailable: %v",
			domain.ErrConfiguration, requested, err)
	} else {
		logger.Debug("doc converter unavailable, .doc files will be skipped: %v", err)
	}

	return registry, nil
}

func buildOCR(cfg *config.Config) (driven.OCREngine, error) {
	if !cfg.OCR.Enabled {
		return ocrdisabled.New(), nil
	}
	engine, err := tesseract.New(tesseract.Config{
		TesseractCmd: cfg.OCR.TesseractCmd,
		PdftoppmCmd:  cfg.OCR.PdftoppmCmd,
		DPI:          cfg.OCR.DPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ocr.enabled is true but %v", domain.ErrConfiguration, err)
	}
	return engine, nil
}

// requestedFormat returns the first configured extension belonging to
// the format, or empty if the configuration does not ask for it.
func requestedFormat(cfg *config.Config, format domain.Format) string {
	for _, ext := range cfg.Extensions {
		if f, ok := domain.FormatForExtension(strings.ToLower(ext)); ok && f == format {
			return ext
		}
	}
	return ""
}
