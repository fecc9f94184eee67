package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/apmatch/invoice-matcher/internal/common"
)

// APIResponse is the uniform envelope for every endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Message: msg})
}

// writeError maps domain errors onto HTTP statuses. Internal details stay in
// the log; the body carries only the mapped message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, common.ErrNotParsed):
		writeMessage(w, http.StatusBadRequest, "both documents must be parsed first")
	case errors.Is(err, common.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("server.internal_error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
