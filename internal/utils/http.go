package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tacoworks/tollgate/models"
)

// WriteJSON serializes the given data to JSON and writes it to the HTTP response.
//
// It sets the "Content-Type" header to "application/json" and writes
// the provided HTTP status code before sending the response body.
// HTML escaping is disabled: sync payload bytes must survive the
// response byte for byte or clients cannot verify their checksums.
//
// If marshaling fails, it responds with 500 Internal Server Error
// and returns a wrapped error.
//
// Parameters:
//
//	w          - the HTTP response writer to write the response to
//	data       - any value to be serialized as JSON (struct, map, slice, nil, etc.)
//	statusCode - HTTP status code to set in the response (e.g. http.StatusOK)
//
// Returns:
//
//	int   - number of bytes written to the response body
//	error - non-nil if JSON marshaling fails
//
// Example usage:
//
//	WriteJSON(w, models.BalanceResponse{Balance: balance}, http.StatusOK)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}

// WriteJSONError writes the uniform failure body {"error", "code", ...}
// with the given status code.
//
// Example usage:
//
//	WriteJSONError(w, http.StatusUnauthorized, models.ErrorResponse{
//		Error: app.MsgMissingAuth,
//		Code:  app.CodeMissingAuth,
//	})
func WriteJSONError(w http.ResponseWriter, statusCode int, body models.ErrorResponse) (int, error) {
	return WriteJSON(w, body, statusCode)
}
