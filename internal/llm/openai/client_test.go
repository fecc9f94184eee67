package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apmatch/invoice-matcher/internal/llm"
)

// fakeCompletions returns a chat-completions-shaped response whose assistant
// content is the given string.
func fakeCompletions(t *testing.T, content string, status int) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(srvURL string) *Client {
	return NewClient(Config{
		Enabled: true,
		APIKey:  "test-key",
		BaseURL: srvURL,
	}, nil)
}

func TestExtractDocumentOK(t *testing.T) {
	content := `Sure! Here is the extraction:
{"doc_type":"invoice","doc_number":"INV-42","date":"2024-03-15","vendor_name":"Acme Steel Traders","items":[{"description":"Steel Rod 10mm","qty":20,"rate":450,"line_total":9000}],"subtotal":"9,000.00","taxes":[{"type":"CGST","amount":810},{"type":"SGST","amount":810}],"grand_total":10620}`
	srv, calls := fakeCompletions(t, content, http.StatusOK)

	res := newTestClient(srv.URL).ExtractDocument(context.Background(), llm.ExtractRequest{
		Text:         "TAX INVOICE ...",
		FilenameHint: "inv42.pdf",
	})

	require.Equal(t, llm.OutcomeOK, res.Outcome)
	require.NotNil(t, res.Doc)
	assert.Equal(t, 1, *calls)
	assert.EqualValues(t, "INVOICE", res.Doc.DocType)
	assert.Equal(t, "INV-42", res.Doc.DocNumber)
	require.NotNil(t, res.Doc.GrandTotal)
	assert.Equal(t, 10620.0, *res.Doc.GrandTotal)
	require.NotNil(t, res.Doc.Subtotal)
	assert.Equal(t, 9000.0, *res.Doc.Subtotal)
	assert.Equal(t, "INR", res.Doc.Currency, "default currency applied when absent")
	require.Len(t, res.Doc.Taxes, 2)
	assert.NotNil(t, res.Raw)
}

func TestExtractDocumentDisabled(t *testing.T) {
	srv, calls := fakeCompletions(t, "{}", http.StatusOK)
	c := NewClient(Config{Enabled: false, BaseURL: srv.URL}, nil)

	res := c.ExtractDocument(context.Background(), llm.ExtractRequest{Text: "whatever"})
	assert.Equal(t, llm.OutcomeDisabled, res.Outcome)
	assert.Nil(t, res.Doc)
	assert.Equal(t, 0, *calls, "disabled stage must not call the API")
}

func TestExtractDocumentTransportError(t *testing.T) {
	srv, _ := fakeCompletions(t, "", http.StatusInternalServerError)

	res := newTestClient(srv.URL).ExtractDocument(context.Background(), llm.ExtractRequest{Text: "x"})
	assert.Equal(t, llm.OutcomeTransport, res.Outcome)
	assert.Nil(t, res.Doc)
	assert.Error(t, res.Err)
}

func TestExtractDocumentDecodeError(t *testing.T) {
	srv, _ := fakeCompletions(t, "I could not find any structured data in this document.", http.StatusOK)

	res := newTestClient(srv.URL).ExtractDocument(context.Background(), llm.ExtractRequest{Text: "x"})
	assert.Equal(t, llm.OutcomeDecode, res.Outcome)
	assert.Nil(t, res.Doc)
	assert.NotEmpty(t, res.Raw, "raw content kept for debugging")
}

func TestExtractDocumentSchemaError(t *testing.T) {
	// Survives sanitization (known keys, known doc_type) but the date
	// violates the YYYY-MM-DD pattern.
	srv, _ := fakeCompletions(t, `{"doc_type":"PO","date":"15/03/2024"}`, http.StatusOK)

	res := newTestClient(srv.URL).ExtractDocument(context.Background(), llm.ExtractRequest{Text: "x"})
	assert.Equal(t, llm.OutcomeSchema, res.Outcome)
	assert.Nil(t, res.Doc)
	assert.Error(t, res.Err)
}
