package llm

import (
	"strings"
)

// BuildSystemPrompt composes the system message: role, output contract, and
// field-level guidance. Kept flat and declarative; the schema itself travels
// in a separate message.
func BuildSystemPrompt(req ExtractRequest) string {
	defCur := strings.TrimSpace(req.DefaultCurrency)
	if defCur == "" {
		defCur = "INR"
	}

	parts := []string{
		"You are a procurement document parser for purchase orders and invoices. Return ONLY JSON that matches the provided JSON Schema.",
		"Classify 'doc_type' as PO, INVOICE, or DELIVERY from the document text itself; use UNKNOWN only when genuinely unclassifiable.",
		"Use ISO-8601 dates (YYYY-MM-DD).",
		"Currency must be a 3-letter ISO 4217 code; default to " + defCur + " if uncertain.",
		"For 'items', list every line item with description, qty, rate, and line_total as plain numbers (no thousands separators, no currency symbols).",
		"Put tax lines (CGST, SGST, IGST, VAT and similar) into 'taxes' with their amounts; never fold taxes into line items.",
		"'grand_total' is the final payable amount after taxes.",
		"Never output null. If a field is not present in the document, omit it.",
	}

	if req.DocTypeHint != "" && req.DocTypeHint != "UNKNOWN" {
		parts = append(parts, "The uploader labeled this document as "+string(req.DocTypeHint)+"; trust the text over the label if they disagree.")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the filename hint and the OCR text. Truncation to
// maxChars happens here so the one place that knows the budget applies it.
func BuildUserPrompt(req ExtractRequest, maxChars int) string {
	var b strings.Builder
	if fn := strings.TrimSpace(req.FilenameHint); fn != "" {
		b.WriteString("Filename: ")
		b.WriteString(fn)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(req.Text)
	b.WriteString("\nDocument text:\n")
	if maxChars > 0 && len(text) > maxChars {
		b.WriteString(text[:maxChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
