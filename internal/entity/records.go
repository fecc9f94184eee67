package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/constants"
)

// Company represents a company row for data transfer between layers.
type Company struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Document represents an uploaded source document and its extraction state.
// OCRText and ParsedJSON are nil until the corresponding stage has run.
type Document struct {
	ID         uuid.UUID         `json:"id"`
	CompanyID  uuid.UUID         `json:"company_id"`
	Filename   string            `json:"filename"` // path in the file store
	DocType    constants.DocType `json:"doc_type"`
	UploadedAt time.Time         `json:"uploaded_at"`
	OCRText    *string           `json:"ocr_text,omitempty"`
	ParsedJSON json.RawMessage   `json:"parsed_json,omitempty"`
}

// Match represents a persisted reconciliation verdict.
type Match struct {
	ID              uuid.UUID             `json:"id"`
	CompanyID       uuid.UUID             `json:"company_id"`
	POID            uuid.UUID             `json:"po_id"`
	InvoiceID       uuid.UUID             `json:"invoice_id"`
	Status          constants.MatchStatus `json:"status"`
	Mismatches      json.RawMessage       `json:"mismatches"`
	FraudFlags      json.RawMessage       `json:"fraud_flags"`
	ConfidenceScore float64               `json:"confidence_score"`
	CreatedAt       time.Time             `json:"created_at"`
}
