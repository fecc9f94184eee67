package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/internal/repository"
)

// DocumentStage binds the processor to stored documents: it loads a document
// row, resolves its file-store name to a disk path, runs extraction, and
// persists the results. Resolve is typically storage.FileStore.Path.
type DocumentStage struct {
	Docs    repository.DocumentRepository
	Proc    *Processor
	Resolve func(name string) string
	Logger  *slog.Logger
}

func NewDocumentStage(docs repository.DocumentRepository, proc *Processor, resolve func(string) string, logger *slog.Logger) *DocumentStage {
	if logger == nil {
		logger = slog.Default()
	}
	if resolve == nil {
		resolve = func(name string) string { return name }
	}
	return &DocumentStage{Docs: docs, Proc: proc, Resolve: resolve, Logger: logger}
}

// RunOCR extracts text only and persists it. Unlike the full pipeline, a
// failed extraction here is an error: the caller asked for exactly this step.
func (s *DocumentStage) RunOCR(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.Docs.GetByID(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("load document: %w", err)
	}

	res, err := s.Proc.Extractor.Extract(ctx, s.Resolve(doc.Filename))
	if err != nil {
		s.Logger.Warn("pipeline.document.ocr_failed", "doc_id", docID, "error", err)
		return "", fmt.Errorf("extract text: %w", err)
	}

	if err := s.Docs.SaveOCRText(ctx, docID, res.Text); err != nil {
		return "", fmt.Errorf("persist ocr text: %w", err)
	}
	s.Logger.Info("pipeline.document.ocr_ok",
		"doc_id", docID, "method", res.Method, "chars", len(res.Text))
	return res.Text, nil
}

// RunParse runs the full pipeline and persists raw text plus structured JSON.
// A nil structured result is persisted as raw text only; the outcome travels
// back so the boundary can report what happened.
func (s *DocumentStage) RunParse(ctx context.Context, docID uuid.UUID) (ProcessResult, error) {
	doc, err := s.Docs.GetByID(ctx, docID)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load document: %w", err)
	}

	res := s.Proc.Process(ctx, s.Resolve(doc.Filename), doc.DocType)

	var parsed []byte
	if res.Structured != nil {
		parsed = mustMarshal(res.Structured)
	}
	if err := s.Docs.SaveParsed(ctx, docID, res.RawText, parsed); err != nil {
		return res, fmt.Errorf("persist parsed document: %w", err)
	}
	s.Logger.Info("pipeline.document.parse_done",
		"doc_id", docID, "outcome", string(res.Outcome), "has_doc", res.Structured != nil)
	return res, nil
}
