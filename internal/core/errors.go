package core

import (
	"errors"
	"fmt"
)

var (
	// ErrStream means the upload could not be read to the end. The import
	// is aborted and nothing is written.
	ErrStream = errors.New("stream error")

	// ErrFileTooLarge accompanies ErrStream when the upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file too large")

	ErrProductNotFound    = errors.New("product not found")
	ErrNotOwner           = errors.New("product does not belong to your inventory")
	ErrDuplicateName      = errors.New("product name already exists in your inventory")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already registered")
)

// ParseError is a row the extractor could not turn into a record.
type ParseError struct {
	Line   int
	Row    map[string]string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// RowError converts the parse error for the report.
func (e *ParseError) RowError() RowError {
	return RowError{Line: e.Line, Row: e.Row, Reason: e.Reason, Code: CodeFor(e.Reason)}
}

// ValidationError is a field that failed a business rule, either on an
// imported row or on a manual create/update.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RowFailure is a domain rejection raised while reconciling one row. Reason
// is shown to the user verbatim; Err is the sentinel for errors.Is.
type RowFailure struct {
	Reason string
	Err    error
}

func (e *RowFailure) Error() string {
	return e.Reason
}

func (e *RowFailure) Unwrap() error {
	return e.Err
}

func productNotFound(name string) *RowFailure {
	return &RowFailure{
		Reason: fmt.Sprintf("Product %q not found in your inventory.", name),
		Err:    ErrProductNotFound,
	}
}

func insufficientStock(name string, available, requested int32) *RowFailure {
	return &RowFailure{
		Reason: fmt.Sprintf("Insufficient stock for %q. Available: %d, Requested: %d.", name, available, requested),
		Err:    ErrInsufficientStock,
	}
}
