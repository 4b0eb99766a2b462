package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced posting, user or application
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrHasApplicants refuses deletion of a posting that has applications.
	ErrHasApplicants = errors.New("posting has applicants")
	// ErrPostingClosed refuses a first application to a closed posting.
	ErrPostingClosed = errors.New("posting is closed")
	// ErrForbidden is returned when the current user does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned when no current user is known.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned before any write when input is malformed.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a document store failure. The operation was not
// applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
