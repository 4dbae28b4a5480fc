// Package problem renders RFC-7807 style error bodies shared by all HTTP
// handlers.
package problem

import (
	"encoding/json"
	"net/http"
)

const (
	TypeValidation = "https://netfliz.app/problems/validation-error"
	TypeNotFound   = "https://netfliz.app/problems/not-found"
	TypeForbidden  = "https://netfliz.app/problems/forbidden"
	TypeConflict   = "https://netfliz.app/problems/conflict"
	TypeUpstream   = "https://netfliz.app/problems/upstream-failure"
	TypeInternal   = "https://netfliz.app/problems/internal-error"
)

// Details is the wire shape of an error response.
type Details struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// Write serializes the problem as application/problem+json.
func Write(w http.ResponseWriter, p Details) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, detail string) {
	Write(w, Details{Type: TypeNotFound, Title: "Not found", Status: http.StatusNotFound, Detail: detail})
}

// Forbidden writes a 403 problem.
func Forbidden(w http.ResponseWriter, detail string) {
	Write(w, Details{Type: TypeForbidden, Title: "Forbidden", Status: http.StatusForbidden, Detail: detail})
}

// Validation writes a 400 problem with optional per-field errors.
func Validation(w http.ResponseWriter, detail string, fields map[string][]string) {
	Write(w, Details{Type: TypeValidation, Title: "Invalid request", Status: http.StatusBadRequest, Detail: detail, Errors: fields})
}

// Conflict writes a 409 problem.
func Conflict(w http.ResponseWriter, detail string) {
	Write(w, Details{Type: TypeConflict, Title: "Conflict", Status: http.StatusConflict, Detail: detail})
}

// Upstream writes a 502 problem for failed origin fetches.
func Upstream(w http.ResponseWriter, detail string) {
	Write(w, Details{Type: TypeUpstream, Title: "Upstream failure", Status: http.StatusBadGateway, Detail: detail})
}

// Internal writes a 500 problem without leaking the cause.
func Internal(w http.ResponseWriter) {
	Write(w, Details{Type: TypeInternal, Title: "Internal error", Status: http.StatusInternalServerError, Detail: "internal error"})
}
