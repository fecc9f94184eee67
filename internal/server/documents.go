package server

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/constants"
)

// handleUpload accepts multipart form fields company_id, doc_type, file.
// The file lands in the store under a unique name and a document row records
// the claimed type; extraction happens later via /ocr or /parse.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+1024)
	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	companyID, err := uuid.Parse(r.FormValue("company_id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "company_id must be a UUID")
		return
	}
	docType, ok := constants.ParseDocType(r.FormValue("doc_type"))
	if !ok || !constants.IsUploadable(docType) {
		writeMessage(w, http.StatusBadRequest, "doc_type must be one of PO, INVOICE, DELIVERY")
		return
	}

	// reject uploads for companies that don't exist
	if _, err := s.Companies.GetByID(r.Context(), companyID); err != nil {
		writeError(w, s.Logger, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		writeMessage(w, http.StatusBadRequest, "unsupported file type: "+ext)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}

	name, err := s.Files.Save(data, header.Filename)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}

	doc, err := s.Documents.Create(r.Context(), companyID, name, docType)
	if err != nil {
		// roll back the stored file so the store doesn't accumulate orphans
		_ = s.Files.Delete(name)
		writeError(w, s.Logger, err)
		return
	}

	s.Logger.Info("server.document.uploaded",
		"doc_id", doc.ID, "company_id", companyID,
		"doc_type", string(docType), "bytes", len(data))
	writeData(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "company_id query parameter must be a UUID")
		return
	}
	docs, err := s.Documents.ListByCompany(r.Context(), companyID)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeData(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "resource not found")
		return
	}
	doc, err := s.Documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeData(w, http.StatusOK, doc)
}

func (s *Server) handleRunOCR(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "resource not found")
		return
	}
	text, err := s.Stage.RunOCR(r.Context(), id)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"document_id": id,
		"ocr_text":    text,
	})
}

func (s *Server) handleRunParse(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "resource not found")
		return
	}
	res, err := s.Stage.RunParse(r.Context(), id)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"document_id": id,
		"outcome":     string(res.Outcome),
		"ocr_text":    res.RawText,
		"structured":  res.Structured,
	})
}
