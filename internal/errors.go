package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsValidation reports whether err is a 422 from the backend
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity
}

// ParseError represents errors decoding a backend payload
type ParseError struct {
	Source string // "session", "persona", "graphql"
	Key    string // field or operation
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MergeError represents a failed persona merge
type MergeError struct {
	SourceID int
	TargetID int
	Err      error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge error [%d -> %d]: %v", e.SourceID, e.TargetID, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// SessionFailedError is returned when the backend reports a session in the
// error state
type SessionFailedError struct {
	SessionID int
	Message   string
}

func (e *SessionFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("session %d failed processing", e.SessionID)
	}
	return fmt.Sprintf("session %d failed processing: %s", e.SessionID, e.Message)
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
