package model

import (
	"fmt"
	"strings"
)

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrConflict   ErrorCode = "CONFLICT"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the tomoflow API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// Structural template errors. All four are detected while building the
// dependency graph, before anything runs: a structurally invalid document
// cannot be retried into validity, so construction aborts with no partial
// graph.

// DuplicateIDError reports two step records sharing an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate step id %q", e.ID)
}

// DanglingReferenceError reports a reference or prerequisite naming a step
// id absent from the document.
type DanglingReferenceError struct {
	StepID string // step carrying the bad reference
	Ref    string // raw reference string (or prerequisite id)
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("step %q references %q, which names no step in the document", e.StepID, e.Ref)
}

// UnknownOutputSocketError reports a reference naming an output socket the
// producer's type does not declare.
type UnknownOutputSocketError struct {
	StepID     string // consuming step
	ProducerID string
	TypeName   string // producer's declared type
	Socket     string
}

func (e *UnknownOutputSocketError) Error() string {
	return fmt.Sprintf("step %q references output %q of step %q, but type %s declares no such socket",
		e.StepID, e.Socket, e.ProducerID, e.TypeName)
}

// CyclicDependencyError reports a dependency cycle. Cycle holds the ids in
// order; the first id is repeated at the end for readability in messages.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	path := append(append([]string{}, e.Cycle...), e.Cycle[0])
	return fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> "))
}
