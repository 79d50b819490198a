// Package httperr defines the request-facing error taxonomy. Every failure
// a handler can surface maps to exactly one status code, and the client
// only ever sees a single-field JSON body: {"error": "..."}.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error carries the client-visible message and status code plus an
// optional wrapped cause that is logged but never serialized.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration reports a missing required secret or credential. Not
// retryable; an operator has to fix the deployment.
func Configuration(message string) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message}
}

// BadRequest reports malformed client input, e.g. a callback without a code.
func BadRequest(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Csrf reports a missing, expired, or already-consumed login state.
func Csrf(message string) *Error {
	return &Error{Code: http.StatusForbidden, Message: message}
}

// Credential reports a failed credential: wrong shared secret, invalid or
// expired session token, or a revoked session.
func Credential(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

// Upstream reports a provider failure. code is 401 when the provider
// rejected our credentials and 502 when it misbehaved.
func Upstream(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// RateLimited reports an exhausted request quota.
func RateLimited(message string) *Error {
	return &Error{Code: http.StatusTooManyRequests, Message: message}
}

// StatusOf extracts the HTTP status for err, defaulting to 500 for
// anything outside the taxonomy.
func StatusOf(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the client-visible message for err. Untyped errors
// collapse to a generic message so internal detail never leaks.
func MessageOf(err error) string {
	var he *Error
	if errors.As(err, &he) {
		return he.Message
	}
	return "Internal server error"
}

// Write sends err as the response: its status code and a single-field
// JSON error body.
func Write(w http.ResponseWriter, err error) {
	WriteStatus(w, StatusOf(err), MessageOf(err))
}

// WriteStatus sends an explicit status and error message as JSON.
func WriteStatus(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
