package rcdb

import "testing"

func fixedLookup(alias string, vt ValueType) aliasLookup {
	return func(name string) (string, ValueType, bool) { return alias, vt, true }
}

func TestIntCondCompilesSingleClause(t *testing.T) {
	expr := IntCond("x").Eq(5)
	var args []any
	sql, err := expr.toSQL(fixedLookup("cond_0", ValueInt), &args)
	if err != nil {
		t.Fatal(err)
	}
	if sql != "cond_0.int_value = ?" {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 1 || args[0] != int64(5) {
		t.Errorf("args = %v, want [5]", args)
	}
}

func TestIntCondTypeMismatch(t *testing.T) {
	expr := IntCond("x").Eq(5)
	var args []any
	_, err := expr.toSQL(fixedLookup("cond_0", ValueString), &args)
	if err == nil {
		t.Fatal("expected ConditionTypeMismatchError")
	}
	if _, ok := err.(*ConditionTypeMismatchError); !ok {
		t.Fatalf("got %T, want *ConditionTypeMismatchError", err)
	}
}

func TestAnySameFieldSharesAlias(t *testing.T) {
	expr := Any(IntCond("status").Eq(1), IntCond("status").Eq(2))
	var args []any
	lookup := func(name string) (string, ValueType, bool) { return "cond_0", ValueInt, true }
	sql, err := expr.toSQL(lookup, &args)
	if err != nil {
		t.Fatal(err)
	}
	want := "(cond_0.int_value = ? OR cond_0.int_value = ?)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestAllSingleElementUnwraps(t *testing.T) {
	e := All(IntCond("x").Eq(1))
	if e.kind != exprComparison {
		t.Errorf("expected a bare comparison, got kind %v", e.kind)
	}
}

func TestAllEmptyIsTrue(t *testing.T) {
	e := All()
	var args []any
	sql, err := e.toSQL(nil, &args)
	if err != nil {
		t.Fatal(err)
	}
	if sql != "1 = 1" {
		t.Errorf("sql = %q", sql)
	}
}

func TestNotWrapsClause(t *testing.T) {
	expr := IntCond("x").Eq(1).Not()
	var args []any
	sql, err := expr.toSQL(fixedLookup("cond_0", ValueInt), &args)
	if err != nil {
		t.Fatal(err)
	}
	if sql != "NOT (cond_0.int_value = ?)" {
		t.Errorf("sql = %q", sql)
	}
}

func TestStringInEmptyIsAlwaysFalse(t *testing.T) {
	expr := StringCond("x").In()
	var args []any
	sql, err := expr.toSQL(fixedLookup("cond_0", ValueString), &args)
	if err != nil {
		t.Fatal(err)
	}
	if sql != "1 = 0" {
		t.Errorf("sql = %q", sql)
	}
}

func TestReferencedConditionsCollectsFieldNames(t *testing.T) {
	expr := All(IntCond("a").Eq(1), Any(StringCond("b").Eq("x"), IntCond("a").Eq(2)).Not())
	var names []string
	expr.referencedConditions(&names)
	if len(names) != 3 {
		t.Fatalf("names = %v, want 3 entries (with duplicates)", names)
	}
}

func TestAliasLookup(t *testing.T) {
	expr, ok := Alias("is_field_on")
	if !ok {
		t.Fatal("expected is_field_on alias to exist")
	}
	if expr.kind != exprComparison {
		t.Errorf("expected a bare comparison for is_field_on")
	}
	if _, ok := Alias("does_not_exist"); ok {
		t.Error("expected unknown alias to be absent")
	}
}
