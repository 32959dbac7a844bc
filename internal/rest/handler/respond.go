package handler

import (
	"net/http"

	"github.com/bytedance/sonic"

	restTypes "github.com/wardenhq/warden/internal/rest/types"
)

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

// writeError sends a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, message, code string) error {
	return writeJSON(w, status, restTypes.ErrorResponse{Error: message, Code: code})
}
