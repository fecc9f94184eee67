package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/apmatch/invoice-matcher/constants"
)

// minTextLayerChars is the threshold below which a PDF text layer is treated
// as absent (image-only scan) and the rasterize+OCR fallback kicks in.
const minTextLayerChars = 16

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.FileFormat
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("ocr.extract.unsupported_ext", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
}

// extractPDF tries the embedded text layer first and falls back to
// rasterize+OCR when the layer is missing or effectively empty.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	pages := e.pdfPageCount(path)

	text, textPages, warns, err := e.pdfToText(ctx, path)
	if err == nil && len(strings.TrimSpace(text)) >= minTextLayerChars {
		if pages == 0 {
			pages = textPages
		}
		text = Normalize(text)
		return ExtractionResult{
			Text:       text,
			Pages:      pages,
			SourceType: constants.PDF,
			Method:     "pdf-text",
			Language:   e.cfg.TesseractLang,
			Warnings:   warns,
			Confidence: heuristicConfidence(text),
		}, nil
	}
	if err != nil {
		warns = append(warns, err.Error())
	} else {
		warns = append(warns, "pdf text layer empty; falling back to OCR")
	}

	ocrText, ocrPages, w2, err := e.pdfToOCR(ctx, path)
	warns = append(warns, w2...)
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF, Warnings: warns}, err
	}
	ocrText = Normalize(ocrText)
	return ExtractionResult{
		Text:       ocrText,
		Pages:      ocrPages,
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
		Confidence: heuristicConfidence(ocrText),
	}, nil
}
