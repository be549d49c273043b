package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory is returned when an Encoding meets a value it has no
	// code for.
	ErrUnknownCategory = errors.New("frame: value has no code in encoding")

	// ErrMissingFill is returned when a fill value is itself missing.
	ErrMissingFill = errors.New("frame: fill value must not be missing")

	// ErrMultiLevel is returned by single-level accessors on a result grouped
	// by more than one key.
	ErrMultiLevel = errors.New("frame: result has a multi-level key")

	// ErrRowReducer is returned when a row-selecting reducer is used where a
	// value reducer is expected, or the other way round.
	ErrRowReducer = errors.New("frame: reducer kind not allowed here")
)

// NotFoundError reports an input path that does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("frame: input %s not found: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// FormatError reports input that cannot be parsed as delimited tabular data.
// Line is 1-based and zero when unknown.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	src := e.Path
	if src == "" {
		src = "input"
	}
	if e.Line > 0 {
		return fmt.Sprintf("frame: malformed %s at line %d: %v", src, e.Line, e.Err)
	}
	return fmt.Sprintf("frame: malformed %s: %v", src, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// UnknownColumnError reports an operation naming a column absent from the
// current schema.
type UnknownColumnError struct {
	Op     string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("frame: %s: unknown column %q", e.Op, e.Column)
}

// EmptyColumnError reports a mean requested over a column with no values.
type EmptyColumnError struct {
	Column string
}

func (e *EmptyColumnError) Error() string {
	return fmt.Sprintf("frame: column %q has no non-missing values", e.Column)
}

// KindError reports a cell whose kind does not fit the operation, e.g. a mean
// over a text column.
type KindError struct {
	Op     string
	Column string
	Want   Kind
	Got    Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("frame: %s: column %q holds %s values, want %s", e.Op, e.Column, e.Got, e.Want)
}
