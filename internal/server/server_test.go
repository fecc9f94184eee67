package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apmatch/invoice-matcher/constants"
	"github.com/apmatch/invoice-matcher/internal/entity"
	"github.com/apmatch/invoice-matcher/internal/export"
	"github.com/apmatch/invoice-matcher/internal/llm"
	"github.com/apmatch/invoice-matcher/internal/ocr"
	"github.com/apmatch/invoice-matcher/internal/pipeline"
	"github.com/apmatch/invoice-matcher/internal/repository"
	"github.com/apmatch/invoice-matcher/internal/storage"
)

func fptr(f float64) *float64 { return &f }

type fakeTextExtractor struct{}

func (fakeTextExtractor) Extract(context.Context, string) (ocr.ExtractionResult, error) {
	return ocr.ExtractionResult{Text: "extracted text", Method: "pdf-text", Pages: 1}, nil
}

// fakeStructuredExtractor returns a document keyed off the claimed type, so
// PO and Invoice uploads parse into distinct sides of a match.
type fakeStructuredExtractor struct{}

func (fakeStructuredExtractor) ExtractDocument(_ context.Context, req llm.ExtractRequest) llm.Result {
	doc := &entity.StructuredDocument{
		DocType:    req.DocTypeHint,
		Date:       "2024-01-10",
		VendorName: "Acme Corp",
		Items:      []entity.LineItem{{Description: "Steel Rod 10mm", Qty: 20, Rate: 450, LineTotal: 9000}},
		GrandTotal: fptr(1000),
		Currency:   "INR",
	}
	if req.DocTypeHint == constants.DocTypeInvoice {
		doc.Date = "2024-01-15"
		doc.GrandTotal = fptr(1100) // 10% over: one total_mismatch expected
	}
	return llm.Result{Doc: doc, Outcome: llm.OutcomeOK}
}

type env struct {
	srv       *httptest.Server
	companyID uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	tmp := t.TempDir()

	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(tmp, "api.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.Migrate(ctx, db, nil))

	companies := repository.NewCompanyRepository(db, nil)
	documents := repository.NewDocumentRepository(db, nil)
	matches := repository.NewMatchRepository(db, nil)

	files, err := storage.NewLocalStore(filepath.Join(tmp, "uploads"), 25, nil)
	require.NoError(t, err)

	proc := pipeline.NewProcessor(fakeTextExtractor{}, fakeStructuredExtractor{}, nil)
	stage := pipeline.NewDocumentStage(documents, proc, files.Path, nil)

	reports, err := export.NewService(filepath.Join(tmp, "reports"), nil)
	require.NoError(t, err)

	s := New(companies, documents, matches, files, stage, reports, 25, nil)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	co, err := companies.Create(ctx, "Acme Buyer Ltd", nil, nil)
	require.NoError(t, err)

	return &env{srv: srv, companyID: co.ID}
}

func (e *env) postJSON(t *testing.T, path string, body any) (*http.Response, APIResponse) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func (e *env) get(t *testing.T, path string) (*http.Response, APIResponse) {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *env) upload(t *testing.T, docType, filename string, content []byte) (*http.Response, APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("company_id", e.companyID.String()))
	require.NoError(t, mw.WriteField("doc_type", docType))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(e.srv.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

// uploadAndParse runs the full intake for one document and returns its id.
func (e *env) uploadAndParse(t *testing.T, docType, filename string) uuid.UUID {
	t.Helper()
	resp, env := e.upload(t, docType, filename, []byte("%PDF-1.4 fake content"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := docID(t, env)

	resp2, _ := e.postJSON(t, fmt.Sprintf("/documents/%s/parse", id), nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	return id
}

func docID(t *testing.T, env APIResponse) uuid.UUID {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	require.True(t, ok, "data: %#v", env.Data)
	id, err := uuid.Parse(data["id"].(string))
	require.NoError(t, err)
	return id
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	resp, out := e.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)
}

func TestCompanyCreateAndGet(t *testing.T) {
	e := newEnv(t)
	resp, out := e.postJSON(t, "/companies", map[string]any{
		"name":           "Vendor Co",
		"contact_person": "S. Iyer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, out.Success)
	id := docID(t, out)

	resp, out = e.get(t, "/companies/"+id.String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := out.Data.(map[string]any)
	assert.Equal(t, "Vendor Co", data["name"])
}

func TestCompanyValidationAndMissing(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.postJSON(t, "/companies", map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.get(t, "/companies/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.get(t, "/companies/not-a-uuid")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadValidation(t *testing.T) {
	e := newEnv(t)

	resp, out := e.upload(t, "RECEIPT", "doc.pdf", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out.Message, "doc_type")

	resp, _ = e.upload(t, "PO", "notes.docx", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// unknown company
	other := &env{srv: e.srv, companyID: uuid.New()}
	resp, _ = other.upload(t, "PO", "doc.pdf", []byte("x"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadListAndGet(t *testing.T) {
	e := newEnv(t)
	resp, out := e.upload(t, "PO", "po 1001.pdf", []byte("%PDF fake"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := docID(t, out)

	resp, out = e.get(t, "/documents?company_id="+e.companyID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := out.Data.([]any)
	require.Len(t, list, 1)

	resp, out = e.get(t, "/documents/"+id.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := out.Data.(map[string]any)
	assert.Equal(t, "PO", data["doc_type"])
	assert.NotContains(t, data, "ocr_text", "no extraction has run yet")
}

func TestRunOCREndpoint(t *testing.T) {
	e := newEnv(t)
	_, out := e.upload(t, "INVOICE", "inv.pdf", []byte("%PDF fake"))
	id := docID(t, out)

	resp, out := e.postJSON(t, fmt.Sprintf("/documents/%s/ocr", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := out.Data.(map[string]any)
	assert.Equal(t, "extracted text", data["ocr_text"])
}

func TestRunParseEndpoint(t *testing.T) {
	e := newEnv(t)
	_, out := e.upload(t, "PO", "po.pdf", []byte("%PDF fake"))
	id := docID(t, out)

	resp, out := e.postJSON(t, fmt.Sprintf("/documents/%s/parse", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := out.Data.(map[string]any)
	assert.Equal(t, "ok", data["outcome"])
	structured := data["structured"].(map[string]any)
	assert.Equal(t, "Acme Corp", structured["vendor_name"])
}

func TestMatchFlow(t *testing.T) {
	e := newEnv(t)
	poID := e.uploadAndParse(t, "PO", "po.pdf")
	invID := e.uploadAndParse(t, "INVOICE", "inv.pdf")

	resp, out := e.postJSON(t, "/match", map[string]any{
		"company_id": e.companyID,
		"po_id":      poID,
		"invoice_id": invID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, out.Success)

	data := out.Data.(map[string]any)
	assert.Equal(t, "Warning", data["status"], "10%% total diff should demote to Warning")
	assert.NotEmpty(t, data["report_path"])

	result := data["result"].(map[string]any)
	mismatches := result["mismatches"].([]any)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "total_mismatch", mismatches[0].(map[string]any)["type"])
	assert.Equal(t, 90.0, result["score"])

	matchID := data["match_id"].(string)
	resp, out = e.get(t, "/match/"+matchID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stored := out.Data.(map[string]any)
	assert.Equal(t, "Warning", stored["status"])
	assert.Equal(t, 90.0, stored["confidence_score"])
}

func TestMatchRequiresParsedDocuments(t *testing.T) {
	e := newEnv(t)
	// uploaded but never parsed
	_, out := e.upload(t, "PO", "po.pdf", []byte("%PDF fake"))
	poID := docID(t, out)
	invID := e.uploadAndParse(t, "INVOICE", "inv.pdf")

	resp, out := e.postJSON(t, "/match", map[string]any{
		"company_id": e.companyID,
		"po_id":      poID,
		"invoice_id": invID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "both documents must be parsed first", out.Message)
}

func TestMatchUnknownDocument(t *testing.T) {
	e := newEnv(t)
	invID := e.uploadAndParse(t, "INVOICE", "inv.pdf")

	resp, _ := e.postJSON(t, "/match", map[string]any{
		"company_id": e.companyID,
		"po_id":      uuid.New(),
		"invoice_id": invID,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMatchMissingMatchRow(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.get(t, "/match/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
