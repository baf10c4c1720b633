package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the error payload every endpoint returns, so clients can
// rely on one shape across the API.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError writes the uniform error payload.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// RespondText writes a UTF-8 plain-text response, used for the counseling
// summary download.
func RespondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Printf("failed to write text response: %v", err)
	}
}
