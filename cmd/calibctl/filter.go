package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropics/calibdb/rcdb"
)

// parseFilter compiles a tiny "field op value [and field op value ...]"
// mini-language into the DSL of the rcdb package. This is a CLI
// convenience for ad-hoc exploration, not part of the library's public
// API surface: the value's type is read from the open DB's condition
// type cache, so the same textual value ("5", "3.5", "true", a bare
// word) compiles to the right comparison kind for its field.
func parseFilter(db *rcdb.DB, expr string) (rcdb.Expr, error) {
	var clauses []rcdb.Expr
	for _, clause := range splitAnd(expr) {
		e, err := parseFilterClause(db, clause)
		if err != nil {
			return rcdb.Expr{}, err
		}
		clauses = append(clauses, e)
	}
	return rcdb.All(clauses...), nil
}

func splitAnd(expr string) []string {
	parts := strings.Split(expr, " and ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var filterOps = []string{">=", "<=", "!=", "contains", "=", ">", "<"}

func parseFilterClause(db *rcdb.DB, clause string) (rcdb.Expr, error) {
	for _, op := range filterOps {
		idx := strings.Index(clause, " "+op+" ")
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(clause[:idx])
		value := strings.TrimSpace(clause[idx+len(op)+2:])
		return buildClause(db, field, op, value)
	}
	return rcdb.Expr{}, fmt.Errorf("calibctl: cannot parse filter clause %q", clause)
}

func buildClause(db *rcdb.DB, field, op, value string) (rcdb.Expr, error) {
	meta, ok := db.ConditionType(field)
	if !ok {
		return rcdb.Expr{}, fmt.Errorf("calibctl: unknown condition %q", field)
	}

	switch meta.ValueType {
	case rcdb.ValueInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return rcdb.Expr{}, fmt.Errorf("calibctl: %s expects an integer: %w", field, err)
		}
		f := rcdb.IntCond(field)
		switch op {
		case "=":
			return f.Eq(n), nil
		case "!=":
			return f.Neq(n), nil
		case ">":
			return f.Gt(n), nil
		case ">=":
			return f.Geq(n), nil
		case "<":
			return f.Lt(n), nil
		case "<=":
			return f.Leq(n), nil
		}
	case rcdb.ValueFloat:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return rcdb.Expr{}, fmt.Errorf("calibctl: %s expects a float: %w", field, err)
		}
		f := rcdb.FloatCond(field)
		switch op {
		case "=":
			return f.Eq(v), nil
		case ">":
			return f.Gt(v), nil
		case ">=":
			return f.Geq(v), nil
		case "<":
			return f.Lt(v), nil
		case "<=":
			return f.Leq(v), nil
		}
	case rcdb.ValueBool:
		f := rcdb.BoolCond(field)
		switch strings.ToLower(value) {
		case "true":
			return f.IsTrue(), nil
		case "false":
			return f.IsFalse(), nil
		}
		return rcdb.Expr{}, fmt.Errorf("calibctl: %s expects true/false", field)
	default:
		f := rcdb.StringCond(field)
		switch op {
		case "=":
			return f.Eq(value), nil
		case "!=":
			return f.Neq(value), nil
		case "contains":
			return f.Contains(value), nil
		}
	}
	return rcdb.Expr{}, fmt.Errorf("calibctl: operator %q is not valid for %s", op, field)
}
