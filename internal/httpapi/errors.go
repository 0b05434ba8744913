package httpapi

import (
	"encoding/json"
	"net/http"

	"chatd/internal/manager"
	"chatd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps well-known manager errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case manager.IsModelNotLoaded(err):
		return http.StatusServiceUnavailable
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
