package record

import (
	"errors"
	"fmt"
)

var (
	// ErrHeaderMissing is returned when the source has no usable header line.
	ErrHeaderMissing = errors.New("header missing")
	// ErrEmptyHeader is returned when the header has no names or a blank name.
	ErrEmptyHeader = errors.New("empty header")
	// ErrDuplicateColumn is returned when a header names the same column twice.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrFieldCountMismatch is returned when a row width differs from the header width.
	ErrFieldCountMismatch = errors.New("field count mismatch")
	// ErrTypeConversion is returned when a typed field cannot parse its source string.
	ErrTypeConversion = errors.New("type conversion failed")
)

// FieldCountError reports a row whose width differs from the header.
type FieldCountError struct {
	Want int
	Got  int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("%v: want %d fields, got %d", ErrFieldCountMismatch, e.Want, e.Got)
}

func (e *FieldCountError) Unwrap() error {
	return ErrFieldCountMismatch
}

// ConversionError reports a field that could not be converted to its Go kind.
type ConversionError struct {
	Field string
	Value string
	Kind  string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%v: field %q value %q as %s: %v", ErrTypeConversion, e.Field, e.Value, e.Kind, e.Err)
}

func (e *ConversionError) Unwrap() []error {
	return []error{ErrTypeConversion, e.Err}
}

// RowError ties a decode failure to the 1-based line it was read from.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
