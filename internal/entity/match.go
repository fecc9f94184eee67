package entity

// Mismatch type discriminators. Stable wire values: persisted as-is and
// rendered into reports.
const (
	MismatchTotal       = "total_mismatch"
	MismatchMissingItem = "missing_item_in_invoice"
	MismatchVendor      = "vendor_mismatch"
)

// Fraud flag tags.
const (
	FraudInvoiceDateBeforePO = "invoice_date_before_po"
)

// Mismatch is one structured discrepancy between a PO and an Invoice.
// Type selects which of the optional fields are populated.
type Mismatch struct {
	Type string `json:"type"`

	// total_mismatch
	POTotal       *float64 `json:"po_total,omitempty"`
	InvoiceTotal  *float64 `json:"invoice_total,omitempty"`
	DifferencePct *float64 `json:"difference_percentage,omitempty"`

	// missing_item_in_invoice (normalized description, last-wins on duplicates)
	Item string `json:"item,omitempty"`

	// vendor_mismatch (raw names, as extracted)
	POVendor      string `json:"po_vendor,omitempty"`
	InvoiceVendor string `json:"invoice_vendor,omitempty"`
}

// MatchResult is the verdict of one reconciliation run. Mismatches and
// FraudFlags are never nil; Score is clamped to [0,100] and rounded to two
// decimal places.
type MatchResult struct {
	Mismatches []Mismatch `json:"mismatches"`
	FraudFlags []string   `json:"fraud_flags"`
	Score      float64    `json:"score"`
}
