package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/remap/internal/diagnostics"
	"github.com/eventflow/remap/internal/evaluator"
	"github.com/eventflow/remap/internal/registry"
	"github.com/eventflow/remap/internal/value"
)

func TestCompileAndRun(t *testing.T) {
	program, diags := Compile(`.greeting = "hello"`, registry.New())
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.All())
	assert.False(t, program.Abortable())

	mutated, result, err := program.Run(value.NewObject())
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, result.String())
	assert.Equal(t, `"hello"`, mutated.(*value.Object).Pairs["greeting"].String())
}

func TestParseErrorsStopCompilation(t *testing.T) {
	program, diags := Compile(".a = ", registry.New())
	assert.Nil(t, program)
	require.False(t, diags.Empty())
	assert.True(t, diags.HasCode(diagnostics.SyntaxError))
}

func TestCheckErrorsStopCompilation(t *testing.T) {
	program, diags := Compile("to_int(.x)", registry.New())
	assert.Nil(t, program)
	assert.False(t, diags.Empty())
}

func TestAbortableIsRecorded(t *testing.T) {
	program, diags := Compile(".n = to_int!(.x)", registry.New())
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.All())
	assert.True(t, program.Abortable())
	assert.True(t, program.FinalType().Kind().ContainsInteger())
}

func TestProgramIsReusable(t *testing.T) {
	program, diags := Compile(".n = to_int(.x) ?? 0", registry.New())
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.All())

	// A failing event must not poison the shared program.
	bad := &value.Object{Pairs: map[string]value.Value{"x": value.NewObject()}}
	mutated, _, err := program.Run(bad)
	require.NoError(t, err)
	assert.Equal(t, "0", mutated.(*value.Object).Pairs["n"].String())

	good := &value.Object{Pairs: map[string]value.Value{"x": &value.String{Value: "7"}}}
	mutated, _, err = program.Run(good)
	require.NoError(t, err)
	assert.Equal(t, "7", mutated.(*value.Object).Pairs["n"].String())
}

func TestAbortSurfacesFromRun(t *testing.T) {
	program, diags := Compile(".n = to_int!(.x)", registry.New())
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.All())

	_, _, err := program.Run(&value.Object{Pairs: map[string]value.Value{
		"x": &value.String{Value: "nope"},
	}})
	require.Error(t, err)
	assert.True(t, evaluator.IsAbort(err))
}
