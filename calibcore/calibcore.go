// Package calibcore holds the small set of types and helpers shared by the
// ccdb and rcdb packages: identifier aliases and the liberal timestamp
// parser both databases use to turn partial date strings into absolute
// instants.
package calibcore

// Id is the primary integer identifier type used throughout CCDB and RCDB
// rows (directories, tables, variations, condition types, ...).
type Id = int64

// RunNumber is the run number type as stored in both databases.
type RunNumber = int64

// MaxRunNumber is the largest run number a Context will accept; it mirrors
// INT32_MAX, the ceiling the original schemas store run numbers under.
const MaxRunNumber RunNumber = 2147483647
