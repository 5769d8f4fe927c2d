package resource

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by every resource type. Handlers map them to HTTP
// status codes through HTTPStatus; nothing expected escapes as a 500.
var (
	// ErrNotFound: well-formed ID with no matching record.
	ErrNotFound = errors.New("resource not found")

	// ErrMalformedID: the ID does not match the 24-hex identifier shape.
	// Distinct from ErrNotFound so clients can tell a typo from a miss.
	ErrMalformedID = errors.New("invalid ID format, must be a 24-character hexadecimal string")
)

// ValidationError carries every violation found in a single request.
// Violations are data, not control flow: the full set is collected and
// returned together instead of failing on the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", len(e.Violations))
}

// ConflictError reports a uniqueness constraint violation (duplicate
// email, duplicate ISBN).
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Field, e.Value)
}

// ReferenceError reports a reference field pointing at a record that does
// not exist (e.g. a task created against an unknown project).
type ReferenceError struct {
	Field    string
	Resource string
	ID       string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Resource, e.ID)
}

// HTTPStatus maps a service error to its HTTP status code.
// One mapping for all resources, applied at the handler boundary.
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
		referenceErr  *ReferenceError
	)

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMalformedID):
		return http.StatusBadRequest
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &conflictErr):
		return http.StatusBadRequest
	case errors.As(err, &referenceErr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the machine-readable code for the response envelope.
func ErrorCode(err error) string {
	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
		referenceErr  *ReferenceError
	)

	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrMalformedID):
		return "INVALID_ID"
	case errors.As(err, &validationErr):
		return "VALIDATION_ERROR"
	case errors.As(err, &conflictErr):
		return "CONFLICT"
	case errors.As(err, &referenceErr):
		return "REFERENCE_NOT_FOUND"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
