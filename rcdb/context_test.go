package rcdb

import "testing"

func TestNewContextSelectsAll(t *testing.T) {
	c := NewContext()
	if c.selection.kind != selectionAll {
		t.Errorf("kind = %v, want selectionAll", c.selection.kind)
	}
	if c.hasFilter {
		t.Error("expected no filter on a fresh context")
	}
}

func TestWithRangeSetsSelection(t *testing.T) {
	c := NewContext().WithRange(10, 20)
	if c.selection.kind != selectionRange || c.selection.start != 10 || c.selection.end != 20 {
		t.Errorf("selection = %+v", c.selection)
	}
}

func TestWithRunsSetsSelection(t *testing.T) {
	c := NewContext().WithRuns([]RunNumber{3, 1, 2})
	if c.selection.kind != selectionRuns {
		t.Fatalf("kind = %v, want selectionRuns", c.selection.kind)
	}
	if len(c.selection.runs) != 3 {
		t.Errorf("runs = %v", c.selection.runs)
	}
}

func TestWithRangeThenAllResetsSelection(t *testing.T) {
	c := NewContext().WithRange(1, 5).All()
	if c.selection.kind != selectionAll {
		t.Errorf("kind = %v, want selectionAll", c.selection.kind)
	}
}

func TestFilterFirstCallSetsDirectly(t *testing.T) {
	c := NewContext()
	e := IntCond("x").Eq(1)
	c.Filter(e)
	if !c.hasFilter {
		t.Fatal("expected hasFilter true")
	}
	if c.filter.kind != exprComparison {
		t.Errorf("expected the filter to be the bare comparison, got kind %v", c.filter.kind)
	}
}

func TestFilterRepeatedCallsAreAnded(t *testing.T) {
	c := NewContext().Filter(IntCond("x").Eq(1)).Filter(IntCond("y").Eq(2))
	if c.filter.kind != exprGroup || c.filter.groupKind != groupAnd {
		t.Fatalf("expected an AND group, got kind=%v groupKind=%v", c.filter.kind, c.filter.groupKind)
	}
	if len(c.filter.clauses) != 2 {
		t.Errorf("clauses = %v, want 2", c.filter.clauses)
	}
}

func TestChainedBuilderReturnsSameContext(t *testing.T) {
	c := NewContext()
	if c.WithRange(1, 2) != c {
		t.Error("WithRange should return the same *Context for chaining")
	}
	if c.Filter(IntCond("x").Eq(1)) != c {
		t.Error("Filter should return the same *Context for chaining")
	}
}
