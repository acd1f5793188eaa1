package rcdb

import (
	"time"

	"github.com/anthropics/calibdb/calibcore"
)

// Id and RunNumber are re-exported so callers rarely need to import
// calibcore directly.
type Id = calibcore.Id
type RunNumber = calibcore.RunNumber

// ValueType is the set of primitive types an RCDB condition type can
// declare.
type ValueType int

const (
	ValueString ValueType = iota
	ValueInt
	ValueBool
	ValueFloat
	ValueJSON
	ValueBlob
	ValueTime
)

func (t ValueType) String() string {
	switch t {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueBool:
		return "bool"
	case ValueFloat:
		return "float"
	case ValueJSON:
		return "json"
	case ValueBlob:
		return "blob"
	case ValueTime:
		return "time"
	default:
		return "unknown"
	}
}

// columnName returns the conditions table column this value type is
// physically stored in.
func (t ValueType) columnName() string {
	switch t {
	case ValueInt:
		return "int_value"
	case ValueFloat:
		return "float_value"
	case ValueBool:
		return "bool_value"
	case ValueTime:
		return "time_value"
	default:
		return "text_value"
	}
}

// isTextual reports whether this value type is physically a text_value.
func (t ValueType) isTextual() bool {
	switch t {
	case ValueString, ValueJSON, ValueBlob:
		return true
	default:
		return false
	}
}

func valueTypeFromIdentifier(s string) (ValueType, error) {
	switch s {
	case "string":
		return ValueString, nil
	case "int":
		return ValueInt, nil
	case "bool":
		return ValueBool, nil
	case "float":
		return ValueFloat, nil
	case "json":
		return ValueJSON, nil
	case "blob":
		return ValueBlob, nil
	case "time":
		return ValueTime, nil
	default:
		return 0, &UnknownValueTypeError{Text: s}
	}
}

// ConditionTypeMeta describes one condition_types row.
type ConditionTypeMeta struct {
	ID          Id
	Name        string
	ValueType   ValueType
	Created     string
	Description string
}

// CreatedAt parses the condition type's creation timestamp.
func (c ConditionTypeMeta) CreatedAt() (time.Time, error) { return calibcore.ParseTimestamp(c.Created) }
