package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDocumentJSONCoercesAndCleans(t *testing.T) {
	in := []byte(`{
		"doc_type": "invoice",
		"doc_number": "  INV-42 ",
		"vendor_name": "Acme Steel Traders",
		"currency": "inr",
		"subtotal": "9,000.00",
		"grand_total": 10620,
		"notes": "should not survive",
		"vendor_gstin": null,
		"items": [
			{"description": " Steel Rod 10mm ", "qty": "20", "rate": 450, "line_total": "9,000.00", "hsn": "7214"},
			{"description": "", "qty": 1},
			"not an object"
		],
		"taxes": [
			{"type": "CGST", "amount": "810.00"},
			{"type": "SGST"}
		]
	}`)

	out, dropped, err := NormalizeDocumentJSON(in, nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"doc_type": "INVOICE",
		"doc_number": "INV-42",
		"vendor_name": "Acme Steel Traders",
		"currency": "INR",
		"subtotal": 9000,
		"grand_total": 10620,
		"items": [
			{"description": "Steel Rod 10mm", "qty": 20, "rate": 450, "line_total": 9000}
		],
		"taxes": [
			{"type": "CGST", "amount": 810}
		]
	}`, string(out))

	assert.Contains(t, dropped, "notes(unknown)")
	assert.Contains(t, dropped, "vendor_gstin(null)")
}

func TestNormalizeDocumentJSONUnknownDocType(t *testing.T) {
	out, _, err := NormalizeDocumentJSON([]byte(`{"doc_type":"receipt"}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"doc_type":"UNKNOWN"}`, string(out))

	out, _, err = NormalizeDocumentJSON([]byte(`{}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"doc_type":"UNKNOWN"}`, string(out))
}

func TestNormalizeDocumentJSONRejectsNonObject(t *testing.T) {
	_, _, err := NormalizeDocumentJSON([]byte(`[1,2,3]`), nil)
	require.Error(t, err)
}

func TestValidateAgainstDocumentSchema(t *testing.T) {
	schema := BuildDocumentJSONSchema()

	good := []byte(`{"doc_type":"PO","vendor_name":"Acme","grand_total":1000,"items":[{"description":"Bolt M6","qty":100,"rate":2.5,"line_total":250}]}`)
	require.NoError(t, ValidateJSONAgainstSchema(schema, good))

	badType := []byte(`{"doc_type":"PO","grand_total":"a lot"}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, badType))

	badEnum := []byte(`{"doc_type":"RECEIPT"}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, badEnum))

	missingRequired := []byte(`{"vendor_name":"Acme"}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, missingRequired))
}

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"doc_type":"INVOICE","grand_total":1020.5,"items":[{"description":"Steel Rod 10mm","qty":20,"rate":51,"line_total":1020.5}]}`))
	require.NoError(t, err)
	require.NotNil(t, doc.GrandTotal)
	assert.Equal(t, 1020.5, *doc.GrandTotal)
	assert.Nil(t, doc.Subtotal)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Steel Rod 10mm", doc.Items[0].Description)
}
