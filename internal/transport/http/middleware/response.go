package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the same {message, success, error} envelope the
// handlers use, so clients see one error shape.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": msg,
		"success": false,
		"error":   http.StatusText(status),
	})
}
