// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every API response is one of two envelopes:
//
//	success: { "message": "Student Created Successfully", "data": {...} }
//	failure: { "error": "No Student Found", "reason": "no student found with id: ..." }
package response

import (
	"encoding/json"
	"net/http"
)

// Success is the envelope for successful responses.
type Success struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Failure is the envelope for every error response. Reason carries the
// underlying cause and is omitted when empty.
type Failure struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// WriteJSON writes a JSON-encoded body with the given status code.
//
// Order matters: Header() → WriteHeader() → body writes. Once WriteHeader
// is called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK wraps data in a Success envelope.
func OK(message string, data any) Success {
	return Success{Message: message, Data: data}
}

// Error builds a Failure with a fixed client-facing message and the
// error's text as the reason. A nil err leaves the reason empty.
func Error(message string, err error) Failure {
	f := Failure{Error: message}
	if err != nil {
		f.Reason = err.Error()
	}
	return f
}
