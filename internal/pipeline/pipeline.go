// Package pipeline chains the compile stages: source text through the
// parser and the type-checker into an immutable Program that any number of
// evaluations may share.
package pipeline

import (
	"github.com/eventflow/remap/internal/analyzer"
	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/diagnostics"
	"github.com/eventflow/remap/internal/evaluator"
	"github.com/eventflow/remap/internal/parser"
	"github.com/eventflow/remap/internal/registry"
	"github.com/eventflow/remap/internal/typesystem"
	"github.com/eventflow/remap/internal/value"
)

// Program is a compiled, immutable program. It is safe to share across
// concurrent Run calls: each evaluation owns its event and variable store.
type Program struct {
	tree      *ast.Program
	types     analyzer.TypeMap
	abortable bool
	final     typesystem.TypeDef
	registry  *registry.Registry
	eval      *evaluator.Evaluator
}

// Compile parses and checks source. On any diagnostic the program is
// rejected; the checker's diagnostics are only consulted after a clean
// parse, since a broken tree produces noise.
func Compile(source string, reg *registry.Registry) (*Program, *diagnostics.List) {
	tree, diags := parser.Parse(source)
	if !diags.Empty() {
		return nil, diags
	}

	res, diags := analyzer.Analyze(tree, reg)
	if !diags.Empty() {
		return nil, diags
	}

	return &Program{
		tree:      tree,
		types:     res.Types,
		abortable: res.Abortable,
		final:     res.Final,
		registry:  reg,
		eval:      evaluator.New(reg, res.Types),
	}, diags
}

// Run evaluates the program against one event, returning the mutated event
// and the final value. The error, when set, is either a recoverable runtime
// failure that escaped through no discharge form (impossible for a compiled
// program) or the fatal abort outcome.
func (p *Program) Run(event value.Value) (value.Value, value.Value, error) {
	return p.eval.Run(p.tree, event)
}

// Abortable reports whether the program contains an abort form.
func (p *Program) Abortable() bool { return p.abortable }

// FinalType is the checked type of the program's resulting value.
func (p *Program) FinalType() typesystem.TypeDef { return p.final }

// Types exposes the per-node annotations, mainly for tests and tooling.
func (p *Program) Types() analyzer.TypeMap { return p.types }
