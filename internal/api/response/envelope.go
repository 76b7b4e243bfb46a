package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TimeFormat is the wire format of every timestamp in a response body.
const TimeFormat = "2006-01-02T15:04:05Z"

// Meta holds metadata for every API response.
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// ListMeta extends Meta with pagination information.
type ListMeta struct {
	Meta
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Error represents a structured API error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the standard API response wrapper.
type Envelope struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
	Meta  any    `json:"meta"`
}

// Page selects a window of a list response. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// DefaultPage is used when a request carries no paging parameters.
var DefaultPage = Page{Page: 1, Limit: 100}

// Paginate returns the window of items selected by p, never nil.
func Paginate[T any](items []T, p Page) []T {
	start := (p.Page - 1) * p.Limit
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := min(start+p.Limit, len(items))
	return items[start:end]
}

// NewMeta creates a Meta with the current timestamp, generating a request id
// when none is given.
func NewMeta(requestID string) Meta {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return Meta{
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(TimeFormat),
	}
}

// Time formats t for a response body.
func Time(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// OptionalTime formats t, or returns nil when t is unset.
func OptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Time(*t)
	return &s
}

// JSON writes env with the given status code.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, status int, data any, requestID string) {
	JSON(w, status, Envelope{Data: data, Meta: NewMeta(requestID)})
}

// SuccessList pages items and writes them with total, page and limit in meta.
func SuccessList[T any](w http.ResponseWriter, status int, items []T, p Page, requestID string) {
	JSON(w, status, Envelope{
		Data: Paginate(items, p),
		Meta: ListMeta{
			Meta:  NewMeta(requestID),
			Total: len(items),
			Page:  p.Page,
			Limit: p.Limit,
		},
	})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, code string, message string, requestID string) {
	ErrWithDetails(w, status, code, message, nil, requestID)
}

// ErrWithDetails writes an error JSON response with additional details.
func ErrWithDetails(w http.ResponseWriter, status int, code string, message string, details any, requestID string) {
	JSON(w, status, Envelope{
		Error: &Error{Code: code, Message: message, Details: details},
		Meta:  NewMeta(requestID),
	})
}
