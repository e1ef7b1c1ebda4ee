package analyzer

import (
	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/diagnostics"
	"github.com/eventflow/remap/internal/typesystem"
)

// checkAssignment handles the single-target form `target = expr`. A fallible
// right side must be discharged first; the target's parent path must be
// overwriteable; afterwards the store reflects the written type at exactly
// that path.
func (a *Analyzer) checkAssignment(n *ast.AssignmentExpression) typesystem.TypeDef {
	rhs := a.checkExpression(n.Value)

	if n.Target.Noop {
		a.diags.Add(diagnostics.New(diagnostics.UnnecessaryNoopAssignment, n.Target.Token,
			"assigning to %q without capturing an error does nothing", "_").
			WithSuggestion("%s", n.Value.String()).
			WithSuggestion("_, err = %s", n.Value.String()))
		return rhs.Infallible()
	}

	if rhs.Fallible() {
		a.diags.Add(diagnostics.New(a.fallibilityCode(n.Value), n.Value.GetToken(),
			"the right side of this assignment can fail at runtime and the failure is not handled").
			WithKinds(rhs.Kind().String()).
			WithSuggestion("%s, err = %s", n.Target.String(), n.Value.String()).
			WithSuggestion("%s = %s ?? <fallback>", n.Target.String(), n.Value.String()).
			WithSuggestion("%s = %s!", n.Target.String(), n.Value.String()))
	}

	written := rhs.Infallible()
	if a.resolveWrite(n.Target) {
		a.assignTarget(n.Target, written)
	}
	return written
}

// checkInfallibleAssignment handles the dual-capture form `ok, err = expr`.
// Both targets are always bound so the statement cannot fail; a right side
// that cannot fail in the first place makes the error capture dead weight.
func (a *Analyzer) checkInfallibleAssignment(n *ast.InfallibleAssignmentExpression) typesystem.TypeDef {
	rhs := a.checkExpression(n.Value)

	if !rhs.Fallible() {
		a.diags.Add(diagnostics.New(diagnostics.UnnecessaryErrorAssignment, n.Token,
			"the error is always null: this expression cannot fail").
			WithKinds(rhs.Kind().String()).
			WithSuggestion("%s = %s", n.Ok.String(), n.Value.String()))
	}
	if n.Ok.Noop && n.Err.Noop {
		a.diags.Add(diagnostics.New(diagnostics.UnnecessaryNoopAssignment, n.Ok.Token,
			"both targets discard their value; drop the assignment").
			WithSuggestion("%s", n.Value.String()))
	}

	// On failure the ok target receives the discharge default of the
	// success type, which stays within the success kind set (or null).
	okDef := typesystem.Def(rhs.Kind().Copy())
	if rhs.Abortable() {
		okDef = okDef.WithAbortable()
	}
	errDef := typesystem.Def(typesystem.NewString().OrNull())

	if !n.Ok.Noop && a.resolveWrite(n.Ok) {
		a.assignTarget(n.Ok, okDef)
	}
	if !n.Err.Noop && a.resolveWrite(n.Err) {
		a.assignTarget(n.Err, errDef)
	}
	return okDef
}

func (a *Analyzer) assignTarget(target *ast.AssignTarget, def typesystem.TypeDef) {
	if target.External {
		a.store.AssignEvent(target.Path, def)
		return
	}
	a.store.Assign(target.Variable, target.Path, def)
}
