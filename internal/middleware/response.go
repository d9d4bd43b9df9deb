package middleware

import (
	"encoding/json"
	"net/http"

	"go-enrollment-server/internal/model"
)

// writeErrorJSON writes the same error envelope the handlers use. An empty
// code is omitted, which is how the access-denied bodies are shaped.
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: true, Code: code, Message: message})
}
