package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/constants"
	"github.com/apmatch/invoice-matcher/internal/entity"
	"github.com/apmatch/invoice-matcher/internal/llm"
	"github.com/apmatch/invoice-matcher/internal/ocr"
)

// TextExtractor is the OCR dependency, satisfied by *ocr.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// ProcessResult is the combined output of both extraction stages.
// RawText is always usable (possibly empty). Structured is nil whenever the
// structured stage was disabled or failed; Outcome says which.
type ProcessResult struct {
	RawText    string
	Structured *entity.StructuredDocument
	Outcome    llm.Outcome
}

// Processor composes text extraction and structured extraction for one
// document. Partial success is terminal: an OCR failure yields empty text, a
// structured failure yields a nil document, and neither is retried here.
type Processor struct {
	Extractor       TextExtractor
	LLM             llm.StructuredExtractor
	DefaultCurrency string
	Logger          *slog.Logger
}

func NewProcessor(tx TextExtractor, fe llm.StructuredExtractor, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Extractor: tx, LLM: fe, Logger: logger}
}

// Process runs OCR then structured extraction on the file at path.
// OCR errors are converted into empty text plus a logged warning; the
// structured stage still runs so its outcome is recorded consistently.
func (p *Processor) Process(ctx context.Context, path string, docType constants.DocType) ProcessResult {
	rid := uuid.New().String()
	start := time.Now()

	p.Logger.Info("pipeline.process.start",
		"req_id", rid, "path", filepath.Base(path), "doc_type", string(docType))

	var rawText string
	res, err := p.Extractor.Extract(ctx, path)
	if err != nil {
		p.Logger.Warn("pipeline.ocr.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
	} else {
		rawText = res.Text
		p.Logger.Info("pipeline.ocr.ok",
			"req_id", rid, "method", res.Method, "pages", res.Pages,
			"chars", len(rawText), "confidence", res.Confidence)
	}

	out := p.LLM.ExtractDocument(ctx, llm.ExtractRequest{
		Text:            rawText,
		FilenameHint:    filepath.Base(path),
		DocTypeHint:     docType,
		DefaultCurrency: p.DefaultCurrency,
	})

	p.Logger.Info("pipeline.process.done",
		"req_id", rid,
		"outcome", string(out.Outcome),
		"has_doc", out.Doc != nil,
		"elapsed_ms", time.Since(start).Milliseconds())

	return ProcessResult{RawText: rawText, Structured: out.Doc, Outcome: out.Outcome}
}
