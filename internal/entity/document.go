package entity

import (
	"github.com/apmatch/invoice-matcher/constants"
)

// StructuredDocument is the normalized shape we want from the LLM for a
// purchase order, invoice, or delivery note. No field is guaranteed present:
// strings use "" for absent, numbers use nil pointers so that 0 and "not on
// the document" stay distinguishable. Consumers must skip comparisons on
// absent fields, never substitute zero.
type StructuredDocument struct {
	DocType     constants.DocType `json:"doc_type"`
	DocNumber   string            `json:"doc_number,omitempty"`
	Date        string            `json:"date,omitempty"` // YYYY-MM-DD
	VendorName  string            `json:"vendor_name,omitempty"`
	VendorGSTIN string            `json:"vendor_gstin,omitempty"`
	Items       []LineItem        `json:"items,omitempty"`
	Subtotal    *float64          `json:"subtotal,omitempty"`
	Taxes       []TaxLine         `json:"taxes,omitempty"`
	GrandTotal  *float64          `json:"grand_total,omitempty"`
	Currency    string            `json:"currency,omitempty"` // ISO 4217, default INR
}

// LineItem is a single order/invoice line.
type LineItem struct {
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit,omitempty"`
	Rate        float64 `json:"rate"`
	LineTotal   float64 `json:"line_total"`
}

// TaxLine is one tax component (e.g. CGST, SGST, IGST).
type TaxLine struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}
