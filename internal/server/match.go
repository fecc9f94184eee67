package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/internal/common"
	"github.com/apmatch/invoice-matcher/internal/entity"
	"github.com/apmatch/invoice-matcher/internal/matcher"
)

type matchRequest struct {
	CompanyID uuid.UUID `json:"company_id"`
	POID      uuid.UUID `json:"po_id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
}

type matchResponse struct {
	MatchID    uuid.UUID          `json:"match_id"`
	Status     string             `json:"status"`
	Result     entity.MatchResult `json:"result"`
	ReportPath string             `json:"report_path,omitempty"`
}

// handleMatch loads both parsed documents, runs the reconciliation engine,
// persists the verdict, and renders the report. A missing document is 404; a
// document that was never parsed is 400.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyID == uuid.Nil || req.POID == uuid.Nil || req.InvoiceID == uuid.Nil {
		writeMessage(w, http.StatusBadRequest, "company_id, po_id and invoice_id are required")
		return
	}

	ctx := r.Context()
	po, err := s.loadParsed(ctx, w, req.POID)
	if err != nil {
		return
	}
	inv, err := s.loadParsed(ctx, w, req.InvoiceID)
	if err != nil {
		return
	}

	result := matcher.Match(po, inv)
	status := matcher.DeriveStatus(result)

	row, err := s.Matches.Create(ctx, &entity.Match{
		CompanyID:       req.CompanyID,
		POID:            req.POID,
		InvoiceID:       req.InvoiceID,
		Status:          status,
		Mismatches:      mustMarshal(result.Mismatches),
		FraudFlags:      mustMarshal(result.FraudFlags),
		ConfidenceScore: result.Score,
	})
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}

	reportPath := ""
	if s.Reports != nil {
		reportPath, err = s.Reports.WriteMatchReport(row.ID, po, inv, result)
		if err != nil {
			// verdict is already persisted; a report failure should not void it
			s.Logger.Warn("server.match.report_failed", "match_id", row.ID, "error", err)
			reportPath = ""
		}
	}

	s.Logger.Info("server.match.done",
		"match_id", row.ID, "status", string(status), "score", result.Score,
		"mismatches", len(result.Mismatches), "fraud_flags", len(result.FraudFlags))
	writeData(w, http.StatusOK, matchResponse{
		MatchID:    row.ID,
		Status:     string(status),
		Result:     result,
		ReportPath: reportPath,
	})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "resource not found")
		return
	}
	m, err := s.Matches.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

// loadParsed fetches a document and decodes its persisted structured JSON,
// writing the error response itself when either step fails.
func (s *Server) loadParsed(ctx context.Context, w http.ResponseWriter, id uuid.UUID) (*entity.StructuredDocument, error) {
	doc, err := s.Documents.GetByID(ctx, id)
	if err != nil {
		writeError(w, s.Logger, err)
		return nil, err
	}
	if len(doc.ParsedJSON) == 0 {
		writeError(w, s.Logger, common.ErrNotParsed)
		return nil, common.ErrNotParsed
	}
	var sd entity.StructuredDocument
	if err := json.Unmarshal(doc.ParsedJSON, &sd); err != nil {
		writeError(w, s.Logger, err)
		return nil, err
	}
	return &sd, nil
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
