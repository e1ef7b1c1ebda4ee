package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/remap/internal/ast"
)

func parseOne(t *testing.T, input string) ast.Expression {
	t.Helper()
	prog, diags := Parse(input)
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.All())
	require.Len(t, prog.Statements, 1)
	return prog.Statements[0].(*ast.ExpressionStatement).Expression
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, `"hi"`, parseOne(t, `"hi"`).String())
	assert.Equal(t, "42", parseOne(t, "42").String())
	assert.Equal(t, "3.14", parseOne(t, "3.14").String())
	assert.Equal(t, "true", parseOne(t, "true").String())
	assert.Equal(t, "null", parseOne(t, "null").String())
	assert.Equal(t, `r'\d+'`, parseOne(t, `r'\d+'`).String())
}

func TestPrecedence(t *testing.T) {
	cases := []struct{ input, rendered string }{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"a && b || c", "a && b || c"},
		{"1 + 2 == 3", "1 + 2 == 3"},
		{"(1 + 2) * 3", "1 + 2 * 3"}, // grouping changes the tree, not the rendering
		{"a ?? b + 1", "a ?? b + 1"},
		{"!a && b", "!a && b"},
		{"-x + 1", "-x + 1"},
		{"1 < 2 == 3 >= 4", "1 < 2 == 3 >= 4"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.rendered, parseOne(t, tc.input).String(), "input %q", tc.input)
	}

	// ?? binds loosest: the whole comparison is its left side.
	expr := parseOne(t, "a == b ?? c").(*ast.CoalesceExpression)
	assert.Equal(t, "a == b", expr.Left.String())
}

func TestGroupingChangesShape(t *testing.T) {
	grouped := parseOne(t, "(1 + 2) * 3").(*ast.InfixExpression)
	assert.Equal(t, "*", grouped.Operator)
	flat := parseOne(t, "1 + 2 * 3").(*ast.InfixExpression)
	assert.Equal(t, "+", flat.Operator)
}

func TestEventQueries(t *testing.T) {
	q := parseOne(t, ".message").(*ast.Query)
	assert.True(t, q.External)
	assert.Equal(t, "message", q.Path.String())

	q = parseOne(t, ".nested.items[2].name").(*ast.Query)
	assert.Equal(t, "nested.items[2].name", q.Path.String())

	q = parseOne(t, ".(host | hostname)").(*ast.Query)
	assert.Equal(t, "(host | hostname)", q.Path.String())

	// A bare dot is the whole event.
	q = parseOne(t, ".").(*ast.Query)
	assert.True(t, q.Path.IsRoot())
}

func TestVariableQueries(t *testing.T) {
	q := parseOne(t, "foo").(*ast.Query)
	assert.False(t, q.External)
	assert.Equal(t, "foo", q.Variable)
	assert.True(t, q.Path.IsRoot())

	q = parseOne(t, "foo.bar[0]").(*ast.Query)
	assert.Equal(t, "bar[0]", q.Path.String())
}

func TestAssignments(t *testing.T) {
	a := parseOne(t, ".status = 200").(*ast.AssignmentExpression)
	assert.True(t, a.Target.External)
	assert.Equal(t, ".status = 200", a.String())

	a = parseOne(t, "foo.bar = 1").(*ast.AssignmentExpression)
	assert.Equal(t, "foo", a.Target.Variable)
	assert.Equal(t, "bar", a.Target.Path.String())

	a = parseOne(t, "_ = to_int(.x)").(*ast.AssignmentExpression)
	assert.True(t, a.Target.Noop)

	a = parseOne(t, ". = {}").(*ast.AssignmentExpression)
	assert.True(t, a.Target.External)
	assert.True(t, a.Target.Path.IsRoot())
}

func TestDualCaptureAssignment(t *testing.T) {
	a := parseOne(t, "ok, err = to_int(.x)").(*ast.InfallibleAssignmentExpression)
	assert.Equal(t, "ok", a.Ok.Variable)
	assert.Equal(t, "err", a.Err.Variable)
	assert.Equal(t, "to_int(.x)", a.Value.String())

	a = parseOne(t, "_, err = to_int(.x)").(*ast.InfallibleAssignmentExpression)
	assert.True(t, a.Ok.Noop)

	a = parseOne(t, ".parsed, .failure = parse_json(.raw)").(*ast.InfallibleAssignmentExpression)
	assert.True(t, a.Ok.External)
	assert.Equal(t, "parsed", a.Ok.Path.String())
}

func TestEqualityIsNotAssignment(t *testing.T) {
	e := parseOne(t, "foo == 1")
	_, isInfix := e.(*ast.InfixExpression)
	assert.True(t, isInfix, "== must not backtrack into an assignment")
}

func TestCalls(t *testing.T) {
	c := parseOne(t, `split(.msg, " ")`).(*ast.CallExpression)
	assert.Equal(t, "split", c.Name)
	require.Len(t, c.Arguments, 2)

	c = parseOne(t, `split(value: .msg, pattern: " ", limit: 2)`).(*ast.CallExpression)
	require.Len(t, c.Arguments, 3)
	assert.Equal(t, "limit", c.Arguments[2].Name)
}

func TestMustForms(t *testing.T) {
	m := parseOne(t, "to_int!(.x)").(*ast.MustExpression)
	inner := m.Expression.(*ast.CallExpression)
	assert.Equal(t, "to_int", inner.Name)
	assert.Equal(t, "to_int!(.x)", m.String())

	m = parseOne(t, "(1 / .x)!").(*ast.MustExpression)
	assert.Equal(t, "1 / .x!", m.String())
}

func TestCoalesce(t *testing.T) {
	c := parseOne(t, `to_string(.msg) ?? "default"`).(*ast.CoalesceExpression)
	assert.Equal(t, "to_string(.msg)", c.Left.String())
	assert.Equal(t, `"default"`, c.Right.String())
}

func TestIfElse(t *testing.T) {
	e := parseOne(t, `if .ok == true { .status = 200 } else { .status = 500 }`).(*ast.IfExpression)
	assert.NotNil(t, e.Alternative)

	e = parseOne(t, "if x == 1 { 1 } else if x == 2 { 2 } else { 3 }").(*ast.IfExpression)
	require.NotNil(t, e.Alternative)
	require.Len(t, e.Alternative.Statements, 1)
	nested := e.Alternative.Statements[0].(*ast.ExpressionStatement).Expression
	_, ok := nested.(*ast.IfExpression)
	assert.True(t, ok)
}

func TestObjectAndArrayLiterals(t *testing.T) {
	o := parseOne(t, `{"a": 1, "b": [true, null]}`).(*ast.ObjectLiteral)
	require.Len(t, o.Entries, 2)
	assert.Equal(t, "a", o.Entries[0].Key)

	o = parseOne(t, "{}").(*ast.ObjectLiteral)
	assert.Empty(t, o.Entries)

	arr := parseOne(t, "[1, 2, 3]").(*ast.ArrayLiteral)
	assert.Len(t, arr.Elements, 3)
}

func TestMultipleStatements(t *testing.T) {
	prog, diags := Parse(".a = 1\n.b = 2; .c = 3\n\n# comment only\n.d = 4")
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.All())
	assert.Len(t, prog.Statements, 4)
}

func TestMultilineCallsAndLiterals(t *testing.T) {
	prog, diags := Parse("split(\n  .msg,\n  \" \"\n)\n{\n  \"a\": 1,\n}")
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.All())
	assert.Len(t, prog.Statements, 2)
}

func TestSyntaxErrors(t *testing.T) {
	_, diags := Parse(".a = ")
	assert.False(t, diags.Empty())

	_, diags = Parse("if x { 1 ")
	assert.False(t, diags.Empty())

	_, diags = Parse("1 + * 2")
	assert.False(t, diags.Empty())
}

func TestRecoveryAcrossStatements(t *testing.T) {
	prog, diags := Parse("1 + * 2\n.ok = 1")
	assert.False(t, diags.Empty())
	// The second statement still parses.
	found := false
	for _, stmt := range prog.Statements {
		if stmt.String() == ".ok = 1" {
			found = true
		}
	}
	assert.True(t, found)
}
