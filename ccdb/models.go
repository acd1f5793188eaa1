package ccdb

import (
	"time"

	"github.com/anthropics/calibdb/calibcore"
)

// Id and RunNumber are re-exported so callers rarely need to import
// calibcore directly.
type Id = calibcore.Id
type RunNumber = calibcore.RunNumber

// ColumnType is the set of primitive vault cell types a CCDB column can
// declare.
type ColumnType int

const (
	ColumnInt ColumnType = iota
	ColumnUInt
	ColumnLong
	ColumnULong
	ColumnDouble
	ColumnString
	ColumnBool
)

func (t ColumnType) String() string {
	switch t {
	case ColumnInt:
		return "int"
	case ColumnUInt:
		return "uint"
	case ColumnLong:
		return "long"
	case ColumnULong:
		return "ulong"
	case ColumnDouble:
		return "double"
	case ColumnString:
		return "string"
	case ColumnBool:
		return "bool"
	default:
		return "unknown"
	}
}

// columnTypeFromString parses the columnType value stored in the columns
// table. An unrecognized tag is reported rather than silently defaulted,
// since a schema with a type we don't understand is a sign the library is
// out of date with the database it's reading.
func columnTypeFromString(s string) (ColumnType, error) {
	switch s {
	case "int":
		return ColumnInt, nil
	case "uint":
		return ColumnUInt, nil
	case "long":
		return ColumnLong, nil
	case "ulong":
		return ColumnULong, nil
	case "double":
		return ColumnDouble, nil
	case "string":
		return ColumnString, nil
	case "bool":
		return ColumnBool, nil
	default:
		return 0, &UnknownColumnTypeError{Text: s}
	}
}

// ColumnMeta describes one column of a TypeTable.
type ColumnMeta struct {
	ID         Id
	Created    string
	Modified   string
	Name       string
	TypeID     Id
	ColumnType ColumnType
	Order      int64
	Comment    string
}

// CreatedAt parses the column's creation timestamp.
func (c ColumnMeta) CreatedAt() (time.Time, error) { return calibcore.ParseTimestamp(c.Created) }

// DirectoryMeta is the cached metadata for one CCDB directory row.
type DirectoryMeta struct {
	ID                  Id
	Created             string
	Modified            string
	Name                string
	ParentID            Id
	AuthorID            Id
	Comment             string
	IsDeprecated        bool
	DeprecatedByUserID  Id
	IsLocked            bool
	LockedByUserID      Id
}

// CreatedAt parses the directory's creation timestamp.
func (d DirectoryMeta) CreatedAt() (time.Time, error) { return calibcore.ParseTimestamp(d.Created) }

// TypeTableMeta is the cached metadata for one CCDB typeTables row.
type TypeTableMeta struct {
	ID                 Id
	Created            string
	Modified           string
	DirectoryID        Id
	Name               string
	NRows              int64
	NColumns           int64
	NAssignments       int64
	AuthorID           Id
	Comment            string
	IsDeprecated       bool
	DeprecatedByUserID Id
	IsLocked           bool
	LockedByUserID     Id
	LockTime           string
}

// CreatedAt parses the table's creation timestamp.
func (t TypeTableMeta) CreatedAt() (time.Time, error) { return calibcore.ParseTimestamp(t.Created) }

// ConstantSetMeta is one constantSets row: the packed vault payload plus
// the table it belongs to.
type ConstantSetMeta struct {
	ID              Id
	Created         string
	Modified        string
	Vault           string
	ConstantTypeID  Id
}

// VariationMeta is one variations row. Variations form a forest keyed by
// ParentID, with ParentID == 0 marking a root.
type VariationMeta struct {
	ID               Id
	Created          string
	Modified         string
	Name             string
	Description      string
	AuthorID         Id
	Comment          string
	ParentID         Id
	IsLocked         bool
	LockTime         string
	LockedByUserID   Id
	GoBackBehavior   int64
	GoBackTime       string
	IsDeprecated     bool
	DeprecatedByUserID Id
}

// AssignmentMetaLite is the trimmed assignment record the resolver
// carries: just enough to load the winning vault afterward.
type AssignmentMetaLite struct {
	ID             Id
	Created        string
	ConstantSetID  Id
}

// CreatedAt parses the assignment's creation timestamp.
func (a AssignmentMetaLite) CreatedAt() (time.Time, error) {
	return calibcore.ParseTimestamp(a.Created)
}

// RunRangeMeta is one runRanges row.
type RunRangeMeta struct {
	ID      Id
	RunMin  RunNumber
	RunMax  RunNumber
}
