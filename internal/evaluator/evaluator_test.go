package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/remap/internal/analyzer"
	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/parser"
	"github.com/eventflow/remap/internal/pathspec"
	"github.com/eventflow/remap/internal/registry"
	"github.com/eventflow/remap/internal/value"
)

func compile(t *testing.T, source string) (*ast.Program, *Evaluator) {
	t.Helper()
	prog, diags := parser.Parse(source)
	require.True(t, diags.Empty(), "parse failed: %v", diags.All())
	res, diags := analyzer.Analyze(prog, registry.New())
	require.True(t, diags.Empty(), "check failed: %v", diags.All())
	return prog, New(registry.New(), res.Types)
}

func run(t *testing.T, source string, event value.Value) (value.Value, value.Value) {
	t.Helper()
	prog, e := compile(t, source)
	if event == nil {
		event = value.NewObject()
	}
	mutated, result, err := e.Run(prog, event)
	require.NoError(t, err)
	return mutated, result
}

func field(t *testing.T, root value.Value, path string) value.Value {
	t.Helper()
	v, ok := value.Get(root, pathspec.MustParse(path))
	require.True(t, ok, "path %s absent", path)
	return v
}

func TestLocalObjectGrowth(t *testing.T) {
	_, result := run(t, "foo = {}\nfoo.bar = 3.14\nfoo", nil)
	obj := result.(*value.Object)
	require.Len(t, obj.Pairs, 1)
	assert.Equal(t, "3.14", obj.Pairs["bar"].String())
}

func TestEventMutation(t *testing.T) {
	mutated, _ := run(t, `.status = 200`+"\n"+`.nested.tag = "x"`, nil)
	assert.Equal(t, "200", field(t, mutated, "status").String())
	assert.Equal(t, `"x"`, field(t, mutated, "nested.tag").String())
}

func TestEventRootReplacement(t *testing.T) {
	mutated, _ := run(t, `. = {"fresh": true}`, &value.Object{Pairs: map[string]value.Value{
		"old": &value.Integer{Value: 1},
	}})
	obj := mutated.(*value.Object)
	require.Len(t, obj.Pairs, 1)
	assert.Equal(t, "true", obj.Pairs["fresh"].String())
}

func TestQueryAbsenceIsNull(t *testing.T) {
	_, result := run(t, ".missing.deep", nil)
	assert.Equal(t, value.NullType, result.Type())
}

func TestArithmetic(t *testing.T) {
	_, result := run(t, "1 + 2 * 3", nil)
	assert.Equal(t, "7", result.String())

	_, result = run(t, "1 + 2.5", nil)
	assert.Equal(t, "3.5", result.String())

	_, result = run(t, `"a" + "b"`, nil)
	assert.Equal(t, `"ab"`, result.String())

	_, result = run(t, "(10 / 4) ?? 0.0", nil)
	assert.Equal(t, "2.5", result.String())
}

func TestDivisionByZeroIsRecoverable(t *testing.T) {
	_, result := run(t, "x = 0\n(1 / x) ?? -1.0", nil)
	assert.Equal(t, "-1", result.String())
}

func TestLogicalShortCircuit(t *testing.T) {
	// The right side would abort; && must not evaluate it.
	_, result := run(t, "false && bool!(.missing)", nil)
	assert.Equal(t, "false", result.String())

	_, result = run(t, "true || bool!(.missing)", nil)
	assert.Equal(t, "true", result.String())
}

func TestCoalesceRuntime(t *testing.T) {
	ev := &value.Object{Pairs: map[string]value.Value{"msg": &value.Integer{Value: 5}}}
	_, result := run(t, `to_string(.msg) ?? "fallback"`, ev)
	assert.Equal(t, `"5"`, result.String())

	ev = &value.Object{Pairs: map[string]value.Value{"msg": value.Null{}}}
	_, result = run(t, `to_timestamp(.msg) ?? "fallback"`, ev)
	assert.Equal(t, `"fallback"`, result.String())
}

func TestDualCaptureRuntime(t *testing.T) {
	// Success: err is null.
	ev := &value.Object{Pairs: map[string]value.Value{"msg": &value.Integer{Value: 7}}}
	_, result := run(t, "v, err = to_string(.msg)\nerr", ev)
	assert.Equal(t, value.NullType, result.Type())

	// Failure: err carries the message, v the discharge default. The
	// assertion's success kind is string, so the default is the empty string.
	ev = &value.Object{Pairs: map[string]value.Value{"msg": value.NewObject()}}
	prog, e := compile(t, "v, err = string(.msg)\n.v = v\n.err = err")
	mutated, _, errRun := e.Run(prog, ev)
	require.NoError(t, errRun)
	assert.NotEqual(t, value.NullType, field(t, mutated, "err").Type())
	assert.Equal(t, `""`, field(t, mutated, "v").String())
}

func TestAbortTerminatesRun(t *testing.T) {
	ev := &value.Object{Pairs: map[string]value.Value{"n": &value.String{Value: "boom"}}}
	prog, e := compile(t, ".before = 1\n.x = to_int!(.n)\n.after = 2")
	mutated, _, err := e.Run(prog, ev)
	require.Error(t, err)
	assert.True(t, IsAbort(err))

	// Statements before the abort took effect, later ones did not.
	assert.Equal(t, "1", field(t, mutated, "before").String())
	_, ok := value.Get(mutated, pathspec.MustParse("after"))
	assert.False(t, ok)
}

func TestAbortIsNotCaughtByCoalesce(t *testing.T) {
	ev := &value.Object{Pairs: map[string]value.Value{"n": &value.String{Value: "x"}}}
	prog, e := compile(t, `(to_int!(.n)) ?? 0`)
	_, _, err := e.Run(prog, ev)
	require.Error(t, err)
	assert.True(t, IsAbort(err))
}

func TestDefensiveParentCheckAborts(t *testing.T) {
	// Statically .a is unknown breadth, so the write compiles; at runtime
	// the parent is a scalar and the defensive check turns it into an abort.
	ev := &value.Object{Pairs: map[string]value.Value{"a": &value.Integer{Value: 1}}}
	prog, e := compile(t, ".a.b = 2")
	_, _, err := e.Run(prog, ev)
	require.Error(t, err)
	assert.True(t, IsAbort(err))
}

func TestIfElseRuntime(t *testing.T) {
	src := "if .status == 200 { .ok = true } else { .ok = false }"
	ev := &value.Object{Pairs: map[string]value.Value{"status": &value.Integer{Value: 200}}}
	mutated, _ := run(t, src, ev)
	assert.Equal(t, "true", field(t, mutated, "ok").String())

	ev = &value.Object{Pairs: map[string]value.Value{"status": &value.Integer{Value: 500}}}
	mutated, _ = run(t, src, ev)
	assert.Equal(t, "false", field(t, mutated, "ok").String())
}

func TestBlockScopingRuntime(t *testing.T) {
	// A binding declared before the block is updated through it.
	_, result := run(t, "x = 1\nif true { x = 2 }\nx", nil)
	assert.Equal(t, "2", result.String())
}

func TestVariablePathWrite(t *testing.T) {
	_, result := run(t, "out.items[1] = \"b\"\nout", nil)
	arr := result.(*value.Object).Pairs["items"].(*value.Array)
	require.Len(t, arr.Elements, 2)
	assert.Equal(t, value.NullType, arr.Elements[0].Type())
	assert.Equal(t, `"b"`, arr.Elements[1].String())
}

func TestSplitAndJoinEndToEnd(t *testing.T) {
	ev := &value.Object{Pairs: map[string]value.Value{"msg": &value.String{Value: "a b c"}}}
	mutated, _ := run(t, `.parts = split(string!(.msg), " ")`+"\n"+`.joined = join!(.parts, "-")`, ev)
	assert.Equal(t, `"a-b-c"`, field(t, mutated, "joined").String())
}

func TestCoalescePathRead(t *testing.T) {
	ev := &value.Object{Pairs: map[string]value.Value{"hostname": &value.String{Value: "h1"}}}
	_, result := run(t, ".(host | hostname)", ev)
	assert.Equal(t, `"h1"`, result.String())
}

func TestNamedArguments(t *testing.T) {
	ev := &value.Object{Pairs: map[string]value.Value{"msg": &value.String{Value: "a b c"}}}
	_, result := run(t, `split(value: string!(.msg), pattern: " ", limit: 2)`, ev)
	arr := result.(*value.Array)
	require.Len(t, arr.Elements, 2)
	assert.Equal(t, `"b c"`, arr.Elements[1].String())
}

func TestEnvironmentPlacement(t *testing.T) {
	env := NewEnvironment()
	env.Set("x", &value.Integer{Value: 1})

	inner := NewEnclosedEnvironment(env)
	inner.Set("x", &value.Integer{Value: 2})
	inner.Set("y", &value.Integer{Value: 3})

	// x lived outside: the write reached the outer scope.
	v, ok := env.Get("x")
	require.True(t, ok)
	assert.Equal(t, "2", v.String())

	// y was new: it stayed inside.
	_, ok = env.Get("y")
	assert.False(t, ok)
}
