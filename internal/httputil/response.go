package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response wrapper returned by every endpoint,
// success or failure.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Success    bool        `json:"success"`
}

// WriteJSON writes an envelope with the given status code, message and
// payload. Success is derived from the status class.
func WriteJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	env := Envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Success:    status < 400,
	}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		// Headers already sent; nothing useful left to do.
		return
	}
}

// WriteError writes a failure envelope with a nil payload.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, message, nil)
}

// Common error response helpers

// WriteBadRequest writes a 400 Bad Request envelope.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes a 401 Unauthorized envelope.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// WriteForbidden writes a 403 Forbidden envelope.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

// WriteNotFound writes a 404 Not Found envelope.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteConflict writes a 409 Conflict envelope.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

// WriteInternalError writes a 500 Internal Server Error envelope.
// Internals are never leaked to the client; callers log the real error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
