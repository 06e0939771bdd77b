package httpapi

import (
	"encoding/json"
	"net/http"
)

// APIError is the non-200 response body: what went wrong and enough detail
// to debug the request.
type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg, details string) {
	WriteJSON(w, status, APIError{Error: msg, Details: details})
}
