package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createCompanyRequest struct {
	Name          string  `json:"name"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Email         *string `json:"email,omitempty"`
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}

	co, err := s.Companies.Create(r.Context(), req.Name, req.ContactPerson, req.Email)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	s.Logger.Info("server.company.created", "company_id", co.ID, "name", co.Name)
	writeData(w, http.StatusCreated, co)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "resource not found")
		return
	}
	co, err := s.Companies.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeData(w, http.StatusOK, co)
}
