package api

import (
	"encoding/json"
	"net/http"
)

// FieldError is one schema violation reported back to the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationError returns the violation list alongside the
// generic invalid-input message.
func respondValidationError(w http.ResponseWriter, details []FieldError) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "入力データが正しくありません",
		"details": details,
	})
}
