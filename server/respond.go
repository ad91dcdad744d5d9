package server

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// resultResponse is the success/failure envelope for operations that report
// a typed failure instead of an HTTP fault (the refresh exchange).
type resultResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, description string) {
	respondJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}
