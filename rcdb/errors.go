// Package rcdb is a read-only client for the Run Conditions Database: a
// SQLite-backed store of per-run scalar conditions, queried through a
// typed comparison DSL that compiles to parameterized SQL.
package rcdb

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSchemaVersion is returned by Open when the database's
	// schema_versions table does not list version 2.
	ErrMissingSchemaVersion = errors.New("rcdb: schema_versions table does not contain version 2")
	// ErrConditionTypeNotFound is wrapped with the offending condition name.
	ErrConditionTypeNotFound = errors.New("rcdb: condition type not found")
	// ErrEmptyConditionList is returned by Fetch when called with no names.
	ErrEmptyConditionList = errors.New("rcdb: empty condition name list")
)

// ConditionTypeMismatchError reports that an Expr built against one
// ValueType was used against a condition declared with a different type.
type ConditionTypeMismatchError struct {
	ConditionName    string
	Expected, Actual ValueType
}

func (e *ConditionTypeMismatchError) Error() string {
	return fmt.Sprintf("rcdb: condition %q has type %s, not %s", e.ConditionName, e.Actual, e.Expected)
}

// UnknownValueTypeError reports a value_type identifier the schema does
// not recognize.
type UnknownValueTypeError struct {
	Text string
}

func (e *UnknownValueTypeError) Error() string {
	return fmt.Sprintf("rcdb: unknown value type %q", e.Text)
}

