package rcdb

type selectionKind int

const (
	selectionAll selectionKind = iota
	selectionRange
	selectionRuns
)

type runSelection struct {
	kind       selectionKind
	start, end RunNumber
	runs       []RunNumber
}

// Context carries an RCDB query's run selection and an optional filter
// expression. The zero value is not useful; build one with NewContext.
type Context struct {
	selection runSelection
	filter    Expr
	hasFilter bool
}

// NewContext returns a Context selecting every run with no filter.
func NewContext() *Context {
	return &Context{selection: runSelection{kind: selectionAll}}
}

// All selects every run in the database.
func (c *Context) All() *Context {
	c.selection = runSelection{kind: selectionAll}
	return c
}

// WithRange selects the inclusive run range [start, end].
func (c *Context) WithRange(start, end RunNumber) *Context {
	c.selection = runSelection{kind: selectionRange, start: start, end: end}
	return c
}

// WithRuns selects an explicit list of runs.
func (c *Context) WithRuns(runs []RunNumber) *Context {
	c.selection = runSelection{kind: selectionRuns, runs: runs}
	return c
}

// Filter ANDs expr onto any filter already set. Repeated calls narrow the
// selection further.
func (c *Context) Filter(expr Expr) *Context {
	if c.hasFilter {
		c.filter = All(c.filter, expr)
	} else {
		c.filter = expr
		c.hasFilter = true
	}
	return c
}
