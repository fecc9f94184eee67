package llm

import (
	"context"

	"github.com/apmatch/invoice-matcher/constants"
	"github.com/apmatch/invoice-matcher/internal/entity"
)

// Outcome classifies how a structured-extraction attempt ended. A nil
// document is a valid, expected result; the outcome says why, so callers and
// logs can tell "switched off" from "the model let us down".
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeDisabled  Outcome = "disabled"        // stage switched off by config
	OutcomeTransport Outcome = "transport_error" // request never produced usable content
	OutcomeDecode    Outcome = "decode_error"    // content produced, no JSON object recoverable
	OutcomeSchema    Outcome = "schema_error"    // JSON recovered but violates the target schema
)

// Result is the stage output. Doc is nil unless Outcome is OutcomeOK.
// Raw carries the recovered JSON (when any) for persistence and debugging.
// Err is diagnostic only; the stage never fails its caller.
type Result struct {
	Doc     *entity.StructuredDocument
	Outcome Outcome
	Raw     []byte
	Err     error
}

// ExtractRequest carries one document's OCR text plus extraction hints.
type ExtractRequest struct {
	Text            string
	FilenameHint    string
	DocTypeHint     constants.DocType // what the uploader claimed; the model may disagree
	DefaultCurrency string
}

// StructuredExtractor is the interface the pipeline depends on.
type StructuredExtractor interface {
	ExtractDocument(ctx context.Context, req ExtractRequest) Result
}
