// Package handlers implements the HTTP API's request handlers: the same
// sort/verify/list operations the CLI exposes, reachable over JSON for a
// GUI or other out-of-process consumer.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// errorResponse is the JSON body written for any non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v as the response body with status and a JSON
// content type.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

// WriteError writes a structured {"error": message} body with status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorResponse{Error: message})
}
