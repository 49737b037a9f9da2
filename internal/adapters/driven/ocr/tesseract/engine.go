// Package tesseract provides an OCR engine backed by the tesseract
// binary, with PDF page rasterization through pdftoppm. Both tools are
// verified at construction, so a missing binary is a configuration
// error at startup rather than a per-file failure mid-batch.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// Default tool commands and rasterization resolution.
const (
	DefaultTesseractCmd = "tesseract"
	DefaultPdftoppmCmd  = "pdftoppm"
	DefaultDPI          = 200
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Config holds configuration for the tesseract engine.
type Config struct {
	// TesseractCmd is the tesseract binary (default: tesseract).
	// Overridable for hosts where it is not on PATH.
	TesseractCmd string

	// PdftoppmCmd is the rasterizer binary (default: pdftoppm).
	PdftoppmCmd string

	// DPI is the rasterization resolution for PDF pages (default: 200).
	DPI int
}

// Engine shells out to tesseract for recognition.
type Engine struct {
	tesseract string
	pdftoppm  string
	dpi       int
}

// New creates a tesseract engine, verifying both tools are installed.
func New(cfg Config) (*Engine, error) {
	if cfg.TesseractCmd == "" {
		cfg.TesseractCmd = DefaultTesseractCmd
	}
	if cfg.PdftoppmCmd == "" {
		cfg.PdftoppmCmd = DefaultPdftoppmCmd
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}

	if _, err := exec.LookPath(cfg.TesseractCmd); err != nil {
		return nil, fmt.Errorf("%w: %q not found on PATH", domain.ErrExtractorUnavailable, cfg.TesseractCmd)
	}
	if _, err := exec.LookPath(cfg.PdftoppmCmd); err != nil {
		return nil, fmt.Errorf("%w: %q not found on PATH", domain.ErrExtractorUnavailable, cfg.PdftoppmCmd)
	}

	return &Engine{
		tesseract: cfg.TesseractCmd,
		pdftoppm:  cfg.PdftoppmCmd,
		dpi:       cfg.DPI,
	}, nil
}

// Available reports whether the engine can run OCR.
func (e *Engine) Available() bool {
	return true
}

// Recognize runs tesseract over the image, returning recognized text.
// Empty output is a valid result.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, e.tesseract, imagePath, "stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running tesseract: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.String(), nil
}

// RecognizePDFPage rasterizes one page to a temporary PNG and OCRs it.
func (e *Engine) RecognizePDFPage(ctx context.Context, pdfPath string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "docvault-ocr-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outBase := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, e.pdftoppm,
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-r", strconv.Itoa(e.dpi),
		"-png", "-singlefile",
		pdfPath, outBase)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("rasterizing page %d: %w (%s)", page, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return e.Recognize(ctx, outBase+".png")
}
