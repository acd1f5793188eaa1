package ccdb

import (
	"errors"
	"fmt"
)

// Sentinel errors a caller can compare against with errors.Is.
var (
	// ErrDirectoryNotFound is wrapped with the offending path.
	ErrDirectoryNotFound = errors.New("ccdb: directory not found")
	// ErrTableNotFound is wrapped with the offending path.
	ErrTableNotFound = errors.New("ccdb: table not found")
	// ErrVariationNotFound is wrapped with the offending variation name.
	ErrVariationNotFound = errors.New("ccdb: variation not found")
	// ErrInvalidPath is wrapped with the offending path.
	ErrInvalidPath = errors.New("ccdb: invalid path")
)

// NamePathError reports a malformed request-string path (spec §4.3's "name
// paths"): it must start with '/' and use only ASCII alphanumerics, '/',
// '_', '-'.
type NamePathError struct {
	Path   string
	Reason string
}

func (e *NamePathError) Error() string {
	return fmt.Sprintf("ccdb: invalid name path %q: %s", e.Path, e.Reason)
}

// ParseRequestError wraps a failure to parse a "<path>[:run[:variation[:timestamp]]]"
// request string.
type ParseRequestError struct {
	Input string
	Err   error
}

func (e *ParseRequestError) Error() string {
	return fmt.Sprintf("ccdb: invalid request %q: %v", e.Input, e.Err)
}

func (e *ParseRequestError) Unwrap() error { return e.Err }

// ColumnCountMismatchError reports that a vault did not decode to exactly
// nrows*ncolumns cells.
type ColumnCountMismatchError struct {
	Expected, Found int
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("ccdb: column count mismatch (expected %d, found %d)", e.Expected, e.Found)
}

// ParseError reports a single cell that failed to parse under its column's
// declared type.
type ParseError struct {
	Row, Column int
	ColumnType  ColumnType
	Text        string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ccdb: parse error at row %d, column %d (%s): %q", e.Row, e.Column, e.ColumnType, e.Text)
}

// RowOutOfBoundsError reports a row index at or past nrows.
type RowOutOfBoundsError struct {
	Requested, NRows int
}

func (e *RowOutOfBoundsError) Error() string {
	return fmt.Sprintf("ccdb: row index %d out of bounds (nrows=%d)", e.Requested, e.NRows)
}

// UnknownColumnTypeError reports a columnType string the schema does not
// recognize.
type UnknownColumnTypeError struct {
	Text string
}

func (e *UnknownColumnTypeError) Error() string {
	return fmt.Sprintf("ccdb: unknown column type %q", e.Text)
}
