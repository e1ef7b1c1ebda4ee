package analyzer

import (
	"strings"

	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/diagnostics"
	"github.com/eventflow/remap/internal/registry"
	"github.com/eventflow/remap/internal/typesystem"
)

// checkCall resolves arguments, aligns them with the registry signature,
// rejects statically impossible argument kinds, and consults the declared
// fallibility contract for the remaining ones.
func (a *Analyzer) checkCall(n *ast.CallExpression) typesystem.TypeDef {
	fn, ok := a.registry.Lookup(n.Name)
	if !ok {
		d := diagnostics.New(diagnostics.UnknownFunction, n.Token, "unknown function %q", n.Name)
		for _, name := range a.registry.Names() {
			if strings.HasPrefix(name, n.Name) || strings.HasPrefix(n.Name, name) {
				d = d.WithSuggestion("did you mean %q?", name)
			}
		}
		a.diags.Add(d)
		for _, arg := range n.Arguments {
			a.checkExpression(arg.Value)
		}
		return typesystem.DefAny()
	}

	aligned := a.alignArguments(fn.Name, fn.Params, n)

	kinds := make([]*typesystem.Kind, len(fn.Params))
	abortable := false
	for i, param := range fn.Params {
		arg := aligned[i]
		if arg == nil {
			if param.Required {
				a.diags.Add(diagnostics.New(diagnostics.InvalidArgumentType, n.Token,
					"%s needs the %q argument", fn.Name, param.Name))
			}
			continue
		}

		def := a.checkExpression(arg.Value)
		a.requireInfallible(arg.Value, def)
		abortable = abortable || def.Abortable()
		kinds[i] = def.Kind()

		if !def.Kind().Intersects(param.Kinds) {
			a.diags.Add(diagnostics.New(diagnostics.InvalidArgumentType, arg.Value.GetToken(),
				"the %q argument of %s can never be %s; it accepts %s",
				param.Name, fn.Name, def.Kind(), param.Kinds).
				WithKinds(def.Kind().String(), param.Kinds.String()))
		}
	}

	out := typesystem.Def(fn.Return(kinds))
	if fn.FallibleFor(kinds) {
		out = out.WithFallible()
	}
	if abortable {
		out = out.WithAbortable()
	}
	return out
}

// alignArguments maps positional and named arguments onto parameter slots.
// Misplaced arguments are reported but never stop the walk: the remaining
// arguments are still checked for their own diagnostics.
func (a *Analyzer) alignArguments(name string, params []registry.Parameter, n *ast.CallExpression) []*ast.Argument {
	aligned := make([]*ast.Argument, len(params))
	next := 0
	for _, arg := range n.Arguments {
		if arg.Name == "" {
			if next >= len(params) {
				a.diags.Add(diagnostics.New(diagnostics.InvalidArgumentType, arg.Token,
					"%s takes at most %d arguments", name, len(params)))
				a.checkExpression(arg.Value)
				continue
			}
			aligned[next] = arg
			next++
			continue
		}

		slot := -1
		for i, p := range params {
			if p.Name == arg.Name {
				slot = i
				break
			}
		}
		if slot < 0 {
			a.diags.Add(diagnostics.New(diagnostics.InvalidArgumentType, arg.Token,
				"%s has no %q argument", name, arg.Name))
			a.checkExpression(arg.Value)
			continue
		}
		if aligned[slot] != nil {
			a.diags.Add(diagnostics.New(diagnostics.InvalidArgumentType, arg.Token,
				"the %q argument of %s is given twice", arg.Name, name))
			a.checkExpression(arg.Value)
			continue
		}
		aligned[slot] = arg
		if slot >= next {
			next = slot + 1
		}
	}
	return aligned
}
