package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

const domainErrorTimeFormat = "2006-01-02 15:04:05"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DomainErrorResponse is the timestamped payload used for domain-level
// 4xx responses (conflicts, missing records, invalid input).
type DomainErrorResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeDomainError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, DomainErrorResponse{
		Message:   message,
		Timestamp: time.Now().Format(domainErrorTimeFormat),
	})
}
