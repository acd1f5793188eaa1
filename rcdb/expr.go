package rcdb

import (
	"fmt"
	"strings"
	"time"
)

type groupKind int

const (
	groupAnd groupKind = iota
	groupOr
)

type opKind int

const (
	opBool opKind = iota
	opIntEq
	opIntNeq
	opIntGt
	opIntGeq
	opIntLt
	opIntLeq
	opFloatEq
	opFloatGt
	opFloatGeq
	opFloatLt
	opFloatLeq
	opStringEq
	opStringNeq
	opStringIn
	opStringContains
	opTimeEq
	opTimeGt
	opTimeGeq
	opTimeLt
	opTimeLeq
	opExists
)

type operator struct {
	kind opKind
	i64  int64
	f64  float64
	str  string
	strs []string
	t    time.Time
	b    bool
}

type comparison struct {
	field     string
	valueType ValueType
	op        operator
}

type exprKind int

const (
	exprTrue exprKind = iota
	exprComparison
	exprGroup
	exprNot
)

// Expr is a condition-query predicate: a leaf comparison against one named
// condition, or a boolean combination of sub-expressions. Build one with
// IntCond/FloatCond/StringCond/BoolCond/TimeCond, All, Any, or Alias; the
// zero value is the always-true predicate.
type Expr struct {
	kind      exprKind
	cmp       comparison
	groupKind groupKind
	clauses   []Expr
	inner     *Expr
}

// Not negates the expression.
func (e Expr) Not() Expr {
	inner := e
	return Expr{kind: exprNot, inner: &inner}
}

// referencedConditions appends every condition name this expression reads.
func (e Expr) referencedConditions(out *[]string) {
	switch e.kind {
	case exprComparison:
		*out = append(*out, e.cmp.field)
	case exprGroup:
		for _, c := range e.clauses {
			c.referencedConditions(out)
		}
	case exprNot:
		e.inner.referencedConditions(out)
	}
}

// aliasLookup resolves a condition name to the SQL table alias joined for
// it and that condition's declared value type.
type aliasLookup func(name string) (alias string, valueType ValueType, ok bool)

func (e Expr) toSQL(lookup aliasLookup, args *[]any) (string, error) {
	switch e.kind {
	case exprTrue:
		return "1 = 1", nil
	case exprComparison:
		return e.cmp.toSQL(lookup, args)
	case exprGroup:
		if len(e.clauses) == 0 {
			return "1 = 1", nil
		}
		parts := make([]string, len(e.clauses))
		for i, c := range e.clauses {
			s, err := c.toSQL(lookup, args)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		joiner := " AND "
		if e.groupKind == groupOr {
			joiner = " OR "
		}
		return "(" + strings.Join(parts, joiner) + ")", nil
	case exprNot:
		s, err := e.inner.toSQL(lookup, args)
		if err != nil {
			return "", err
		}
		return "NOT (" + s + ")", nil
	default:
		return "1 = 1", nil
	}
}

func (c comparison) toSQL(lookup aliasLookup, args *[]any) (string, error) {
	alias, actual, ok := lookup(c.field)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrConditionTypeNotFound, c.field)
	}
	if actual != c.valueType {
		return "", &ConditionTypeMismatchError{ConditionName: c.field, Expected: c.valueType, Actual: actual}
	}

	push := func(column, op string, value any) string {
		*args = append(*args, value)
		return fmt.Sprintf("%s.%s %s ?", alias, column, op)
	}
	pushTime := func(op string, t time.Time) string {
		*args = append(*args, t.UTC().Format("2006-01-02 15:04:05"))
		return fmt.Sprintf("%s.time_value %s ?", alias, op)
	}

	switch c.op.kind {
	case opBool:
		if c.op.b {
			return alias + ".bool_value = 1", nil
		}
		return alias + ".bool_value = 0", nil
	case opIntEq:
		return push("int_value", "=", c.op.i64), nil
	case opIntNeq:
		return push("int_value", "!=", c.op.i64), nil
	case opIntGt:
		return push("int_value", ">", c.op.i64), nil
	case opIntGeq:
		return push("int_value", ">=", c.op.i64), nil
	case opIntLt:
		return push("int_value", "<", c.op.i64), nil
	case opIntLeq:
		return push("int_value", "<=", c.op.i64), nil
	case opFloatEq:
		return push("float_value", "=", c.op.f64), nil
	case opFloatGt:
		return push("float_value", ">", c.op.f64), nil
	case opFloatGeq:
		return push("float_value", ">=", c.op.f64), nil
	case opFloatLt:
		return push("float_value", "<", c.op.f64), nil
	case opFloatLeq:
		return push("float_value", "<=", c.op.f64), nil
	case opStringEq:
		return push("text_value", "=", c.op.str), nil
	case opStringNeq:
		return push("text_value", "!=", c.op.str), nil
	case opStringIn:
		if len(c.op.strs) == 0 {
			return "1 = 0", nil
		}
		placeholders := make([]string, len(c.op.strs))
		for i, s := range c.op.strs {
			*args = append(*args, s)
			placeholders[i] = "?"
		}
		return fmt.Sprintf("%s.text_value IN (%s)", alias, strings.Join(placeholders, ", ")), nil
	case opStringContains:
		*args = append(*args, c.op.str)
		return fmt.Sprintf("INSTR(%s.text_value, ?) > 0", alias), nil
	case opTimeEq:
		return pushTime("=", c.op.t), nil
	case opTimeGt:
		return pushTime(">", c.op.t), nil
	case opTimeGeq:
		return pushTime(">=", c.op.t), nil
	case opTimeLt:
		return pushTime("<", c.op.t), nil
	case opTimeLeq:
		return pushTime("<=", c.op.t), nil
	case opExists:
		return fmt.Sprintf("%s.%s IS NOT NULL", alias, c.valueType.columnName()), nil
	default:
		return "1 = 1", nil
	}
}

// All combines the given expressions with AND. Zero expressions yields the
// always-true predicate; one expression is returned unwrapped.
func All(clauses ...Expr) Expr {
	return buildGroup(groupAnd, clauses)
}

// Any combines the given expressions with OR. Zero expressions yields the
// always-true predicate; one expression is returned unwrapped.
func Any(clauses ...Expr) Expr {
	return buildGroup(groupOr, clauses)
}

func buildGroup(kind groupKind, clauses []Expr) Expr {
	switch len(clauses) {
	case 0:
		return Expr{kind: exprTrue}
	case 1:
		return clauses[0]
	default:
		return Expr{kind: exprGroup, groupKind: kind, clauses: clauses}
	}
}

// IntField is the builder returned by IntCond.
type IntField struct{ field string }

// IntCond begins an integer comparison against the named condition.
func IntCond(name string) IntField { return IntField{field: name} }

func (f IntField) cmp(k opKind, v int64) Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueInt, op: operator{kind: k, i64: v}}}
}
func (f IntField) Eq(v int64) Expr  { return f.cmp(opIntEq, v) }
func (f IntField) Neq(v int64) Expr { return f.cmp(opIntNeq, v) }
func (f IntField) Gt(v int64) Expr  { return f.cmp(opIntGt, v) }
func (f IntField) Geq(v int64) Expr { return f.cmp(opIntGeq, v) }
func (f IntField) Lt(v int64) Expr  { return f.cmp(opIntLt, v) }
func (f IntField) Leq(v int64) Expr { return f.cmp(opIntLeq, v) }

// FloatField is the builder returned by FloatCond.
type FloatField struct{ field string }

// FloatCond begins a floating-point comparison against the named condition.
func FloatCond(name string) FloatField { return FloatField{field: name} }

func (f FloatField) cmp(k opKind, v float64) Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueFloat, op: operator{kind: k, f64: v}}}
}
func (f FloatField) Eq(v float64) Expr  { return f.cmp(opFloatEq, v) }
func (f FloatField) Gt(v float64) Expr  { return f.cmp(opFloatGt, v) }
func (f FloatField) Geq(v float64) Expr { return f.cmp(opFloatGeq, v) }
func (f FloatField) Lt(v float64) Expr  { return f.cmp(opFloatLt, v) }
func (f FloatField) Leq(v float64) Expr { return f.cmp(opFloatLeq, v) }

// StringField is the builder returned by StringCond.
type StringField struct{ field string }

// StringCond begins a string comparison against the named condition.
func StringCond(name string) StringField { return StringField{field: name} }

func (f StringField) Eq(v string) Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueString, op: operator{kind: opStringEq, str: v}}}
}
func (f StringField) Neq(v string) Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueString, op: operator{kind: opStringNeq, str: v}}}
}

// In matches when the condition's string value is one of values.
func (f StringField) In(values ...string) Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueString, op: operator{kind: opStringIn, strs: values}}}
}

// Contains matches when the condition's string value contains substr.
func (f StringField) Contains(substr string) Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueString, op: operator{kind: opStringContains, str: substr}}}
}

// BoolField is the builder returned by BoolCond.
type BoolField struct{ field string }

// BoolCond begins a boolean comparison against the named condition.
func BoolCond(name string) BoolField { return BoolField{field: name} }

// IsTrue matches when the condition is explicitly true.
func (f BoolField) IsTrue() Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueBool, op: operator{kind: opBool, b: true}}}
}

// IsFalse matches when the condition is explicitly false.
func (f BoolField) IsFalse() Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueBool, op: operator{kind: opBool, b: false}}}
}

// Exists matches when the condition is present for the run regardless of
// its value.
func (f BoolField) Exists() Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueBool, op: operator{kind: opExists}}}
}

// TimeField is the builder returned by TimeCond.
type TimeField struct{ field string }

// TimeCond begins a timestamp comparison against the named condition.
func TimeCond(name string) TimeField { return TimeField{field: name} }

func (f TimeField) cmp(k opKind, v time.Time) Expr {
	return Expr{kind: exprComparison, cmp: comparison{field: f.field, valueType: ValueTime, op: operator{kind: k, t: v}}}
}
func (f TimeField) Eq(v time.Time) Expr  { return f.cmp(opTimeEq, v) }
func (f TimeField) Gt(v time.Time) Expr  { return f.cmp(opTimeGt, v) }
func (f TimeField) Geq(v time.Time) Expr { return f.cmp(opTimeGeq, v) }
func (f TimeField) Lt(v time.Time) Expr  { return f.cmp(opTimeLt, v) }
func (f TimeField) Leq(v time.Time) Expr { return f.cmp(opTimeLeq, v) }
