package domain

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// Domain errors returned by services and repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTaskNotFound indicates the specified task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidID indicates the provided task ID is not a positive integer.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrInvalidTaskStatus indicates a status outside pending, in_progress and completed.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority indicates a priority outside low, medium and high.
	ErrInvalidTaskPriority = errors.New("invalid task priority")

	// ErrInvalidBulkAction indicates an unknown bulk action name.
	ErrInvalidBulkAction = errors.New("invalid bulk action")

	// ErrInvalidDate indicates a value that is not a calendar date.
	ErrInvalidDate = errors.New("invalid date")
)

// Default messages for ValidationError.
const (
	MessageValidationFailed  = "Validation failed"
	MessageBusinessRuleError = "Business rule violation"
)

// ValidationError carries field-level messages for rejected input or a
// rejected state transition. Fields maps a field name to its messages in
// the order they were added.
type ValidationError struct {
	Message string
	Fields  map[string][]string
	// BusinessRule marks errors raised by transition checks rather than input shape.
	BusinessRule bool
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{
		Message: MessageValidationFailed,
		Fields:  make(map[string][]string),
	}
}

// NewBusinessRuleError returns a ValidationError holding one rule violation.
func NewBusinessRuleError(field, message string) *ValidationError {
	return &ValidationError{
		Message:      MessageBusinessRuleError,
		Fields:       map[string][]string{field: {message}},
		BusinessRule: true,
	}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// First returns the first message recorded for field, or "".
func (e *ValidationError) First(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Err returns e as an error when it holds messages and nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	msg := e.Message
	if msg == "" {
		msg = MessageValidationFailed
	}
	if len(parts) == 0 {
		return msg
	}
	return msg + ": " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
