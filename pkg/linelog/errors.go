package linelog

import (
	"errors"
	"fmt"
)

// Sentinel errors describing why a row was rejected.
var (
	// ErrMalformedRow matches every *MalformedRowError via errors.Is.
	ErrMalformedRow = errors.New("malformed row")
	// ErrMissingColumn indicates a required column is absent from the row.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNotInteger indicates a numeric column holds a non-integer value.
	ErrNotInteger = errors.New("value is not an integer")
	// ErrOutOfRange indicates a numeric value violates its lower bound.
	ErrOutOfRange = errors.New("value out of range")
	// ErrBadTimestamp indicates the date, time or timezone could not be parsed.
	ErrBadTimestamp = errors.New("unparsable timestamp")
	// ErrUnknownType indicates an empty type cell whose file has no known language.
	ErrUnknownType = errors.New("cannot resolve language type")
)

// MalformedRowError reports a raw row that failed required-field or type
// coercion. Row is the zero-based index of the row in the input sequence.
type MalformedRowError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

// Error implements error.
func (e *MalformedRowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d: column %q: %v", e.Row, e.Column, e.Err)
	}

	return fmt.Sprintf("row %d: column %q: %v (got %q)", e.Row, e.Column, e.Err, e.Value)
}

// Unwrap returns the underlying cause.
func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedRow.
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

func malformed(row int, column, value string, err error) *MalformedRowError {
	return &MalformedRowError{Row: row, Column: column, Value: value, Err: err}
}
