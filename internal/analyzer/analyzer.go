// Package analyzer is the expression type-checker: a single post-order walk
// over the parsed tree that resolves every node to a lattice entry plus
// fallibility/abort effects, validates path mutations, and accumulates
// structured diagnostics. Checking continues past errors; structurally
// broken subtrees are poisoned to the unknown entry so one mistake does not
// cascade.
package analyzer

import (
	"regexp"

	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/diagnostics"
	"github.com/eventflow/remap/internal/registry"
	"github.com/eventflow/remap/internal/symbols"
	"github.com/eventflow/remap/internal/typesystem"
)

// TypeMap annotates every checked expression with its resolved TypeDef. The
// evaluator consults it for discharge defaults; tests consult it to observe
// inference.
type TypeMap map[ast.Node]typesystem.TypeDef

// Result is the annotated-tree side of a successful check.
type Result struct {
	Types TypeMap

	// Abortable reports whether the program contains an abort form whose
	// runtime failure terminates the whole run.
	Abortable bool

	// Final is the type of the program's resulting value (the last
	// statement), null for an empty program.
	Final typesystem.TypeDef
}

type Analyzer struct {
	registry *registry.Registry
	store    *symbols.TypeStore
	types    TypeMap
	diags    diagnostics.List
}

func New(reg *registry.Registry) *Analyzer {
	return &Analyzer{
		registry: reg,
		store:    symbols.NewTypeStore(),
		types:    TypeMap{},
	}
}

// Analyze checks a parsed program. The returned diagnostics list is non-empty
// exactly when the program must be rejected.
func Analyze(prog *ast.Program, reg *registry.Registry) (*Result, *diagnostics.List) {
	a := New(reg)
	res := a.checkProgram(prog)
	return res, &a.diags
}

func (a *Analyzer) checkProgram(prog *ast.Program) *Result {
	res := &Result{Types: a.types, Final: typesystem.Def(typesystem.NewNull())}
	for _, stmt := range prog.Statements {
		def := a.checkStatement(stmt)
		if def.Abortable() {
			res.Abortable = true
		}
		res.Final = def
	}
	return res
}

// checkStatement enforces the statement position's infallibility: a bare
// fallible expression must be discharged with one of the handling forms.
func (a *Analyzer) checkStatement(stmt ast.Statement) typesystem.TypeDef {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return typesystem.DefAny()
	}
	def := a.checkExpression(es.Expression)
	if def.Fallible() {
		a.diags.Add(diagnostics.New(a.fallibilityCode(es.Expression), es.Expression.GetToken(),
			"this expression can fail at runtime and the failure is not handled").
			WithKinds(def.Kind().String()).
			WithSuggestion("ok, err = %s", es.Expression.String()).
			WithSuggestion("%s ?? <fallback>", es.Expression.String()).
			WithSuggestion("%s!", es.Expression.String()))
	}
	a.types[stmt] = def
	return def
}

func (a *Analyzer) checkExpression(node ast.Expression) typesystem.TypeDef {
	var def typesystem.TypeDef

	switch n := node.(type) {
	case *ast.StringLiteral:
		def = typesystem.Def(typesystem.NewString())
	case *ast.IntegerLiteral:
		def = typesystem.Def(typesystem.NewInteger())
	case *ast.FloatLiteral:
		def = typesystem.Def(typesystem.NewFloat())
	case *ast.BooleanLiteral:
		def = typesystem.Def(typesystem.NewBoolean())
	case *ast.NullLiteral:
		def = typesystem.Def(typesystem.NewNull())
	case *ast.RegexLiteral:
		def = a.checkRegexLiteral(n)
	case *ast.ObjectLiteral:
		def = a.checkObjectLiteral(n)
	case *ast.ArrayLiteral:
		def = a.checkArrayLiteral(n)
	case *ast.Query:
		def = a.resolveRead(n)
	case *ast.PrefixExpression:
		def = a.checkPrefix(n)
	case *ast.InfixExpression:
		def = a.checkInfix(n)
	case *ast.CallExpression:
		def = a.checkCall(n)
	case *ast.MustExpression:
		def = a.checkMust(n)
	case *ast.CoalesceExpression:
		def = a.checkCoalesce(n)
	case *ast.IfExpression:
		def = a.checkIf(n)
	case *ast.BlockExpression:
		def = a.checkBlock(n)
	case *ast.AssignmentExpression:
		def = a.checkAssignment(n)
	case *ast.InfallibleAssignmentExpression:
		def = a.checkInfallibleAssignment(n)
	default:
		def = typesystem.DefAny()
	}

	a.types[node] = def
	return def
}

func (a *Analyzer) checkRegexLiteral(n *ast.RegexLiteral) typesystem.TypeDef {
	if _, err := regexp.Compile(n.Pattern); err != nil {
		a.diags.Add(diagnostics.New(diagnostics.SyntaxError, n.Token,
			"invalid regex pattern: %v", err))
	}
	return typesystem.Def(typesystem.NewRegex())
}

// checkObjectLiteral resolves entries to a closed object shape. Entry values
// sit in an infallibility-requiring position.
func (a *Analyzer) checkObjectLiteral(n *ast.ObjectLiteral) typesystem.TypeDef {
	fields := make(map[string]*typesystem.Kind, len(n.Entries))
	out := typesystem.TypeDef{}
	for _, entry := range n.Entries {
		def := a.checkExpression(entry.Value)
		a.requireInfallible(entry.Value, def)
		fields[entry.Key] = def.Kind()
		out = out.Union(def)
	}
	return out.WithKind(typesystem.NewObject(fields)).Infallible()
}

func (a *Analyzer) checkArrayLiteral(n *ast.ArrayLiteral) typesystem.TypeDef {
	elems := make([]*typesystem.Kind, len(n.Elements))
	out := typesystem.TypeDef{}
	for i, elem := range n.Elements {
		def := a.checkExpression(elem)
		a.requireInfallible(elem, def)
		elems[i] = def.Kind()
		out = out.Union(def)
	}
	return out.WithKind(typesystem.NewArray(elems...)).Infallible()
}

// fallibilityCode picks the code for an undischarged fallible expression:
// a call whose fallibility comes from the argument types it was given is
// the argument-type class; everything else is the generic class.
func (a *Analyzer) fallibilityCode(expr ast.Expression) diagnostics.Code {
	if call, ok := expr.(*ast.CallExpression); ok {
		if fn, ok := a.registry.Lookup(call.Name); ok && !fn.AlwaysFallible {
			return diagnostics.InvalidArgumentType
		}
	}
	return diagnostics.FallibleWithoutHandling
}

// requireInfallible reports a fallible expression in a position that needs a
// definite value.
func (a *Analyzer) requireInfallible(node ast.Expression, def typesystem.TypeDef) {
	if !def.Fallible() {
		return
	}
	a.diags.Add(diagnostics.New(diagnostics.FallibleWithoutHandling, node.GetToken(),
		"this expression can fail at runtime; handle the failure before using its value").
		WithKinds(def.Kind().String()).
		WithSuggestion("%s ?? <fallback>", node.String()).
		WithSuggestion("%s!", node.String()))
}

func (a *Analyzer) checkMust(n *ast.MustExpression) typesystem.TypeDef {
	inner := a.checkExpression(n.Expression)
	// An infallible inner expression makes the abort marker inert; accepted
	// silently.
	return inner.Infallible().WithAbortable()
}

// checkCoalesce discharges the left side's fallibility: the result is the
// join of the left success type and the right type, fallible only if the
// right side is.
func (a *Analyzer) checkCoalesce(n *ast.CoalesceExpression) typesystem.TypeDef {
	left := a.checkExpression(n.Left)
	right := a.checkExpression(n.Right)
	out := typesystem.Def(left.Kind().Union(right.Kind()))
	if right.Fallible() {
		out = out.WithFallible()
	}
	if left.Abortable() || right.Abortable() {
		out = out.WithAbortable()
	}
	return out
}

// checkIf forks the store per arm and reunifies afterwards. The predicate
// must be exclusively boolean; type assertions exist to narrow it first.
func (a *Analyzer) checkIf(n *ast.IfExpression) typesystem.TypeDef {
	cond := a.checkExpression(n.Condition)
	a.requireInfallible(n.Condition, cond)
	if !cond.Kind().OnlyWithin(typesystem.NewBoolean()) {
		a.diags.Add(diagnostics.New(diagnostics.NonBooleanPredicate, n.Condition.GetToken(),
			"the condition must resolve to a boolean, not %s", cond.Kind()).
			WithKinds(cond.Kind().String()).
			WithSuggestion("bool!(%s)", n.Condition.String()).
			WithSuggestion("to_bool(%s) ?? false", n.Condition.String()))
	}

	base := a.store
	thenFork := base.Fork()
	a.store = thenFork
	thenDef := a.checkBlock(n.Consequence)

	elseFork := base.Fork()
	var elseDef typesystem.TypeDef
	if n.Alternative != nil {
		a.store = elseFork
		elseDef = a.checkBlock(n.Alternative)
	} else {
		elseDef = typesystem.Def(typesystem.NewNull())
	}

	a.store = base
	base.ReplaceWith(symbols.Join(thenFork, elseFork))

	out := thenDef.Union(elseDef)
	if cond.Abortable() {
		out = out.WithAbortable()
	}
	return out
}

func (a *Analyzer) checkBlock(n *ast.BlockExpression) typesystem.TypeDef {
	a.store.PushScope()
	defer a.store.PopScope()

	def := typesystem.Def(typesystem.NewNull())
	abortable := false
	for _, stmt := range n.Statements {
		def = a.checkStatement(stmt)
		abortable = abortable || def.Abortable()
	}
	if abortable {
		def = def.WithAbortable()
	}
	return def
}

func (a *Analyzer) checkPrefix(n *ast.PrefixExpression) typesystem.TypeDef {
	operand := a.checkExpression(n.Right)
	a.requireInfallible(n.Right, operand)

	numeric := typesystem.NewInteger().Union(typesystem.NewFloat())
	var out typesystem.TypeDef
	switch n.Operator {
	case "!":
		out = typesystem.Def(typesystem.NewBoolean())
		if !operand.Kind().OnlyWithin(typesystem.NewBoolean()) {
			out = out.WithFallible()
		}
	case "-":
		kind := operand.Kind().Narrow(numeric)
		if kind.IsNever() {
			kind = numeric
		}
		out = typesystem.Def(kind)
		if !operand.Kind().OnlyWithin(numeric) {
			out = out.WithFallible()
		}
	default:
		out = typesystem.DefAny()
	}
	if operand.Abortable() {
		out = out.WithAbortable()
	}
	return out
}

// checkInfix types the operator result and marks it fallible whenever the
// operand kinds are not statically guaranteed compatible. Incompatibility is
// never a hard error on its own: the discharge forms apply to operators too.
func (a *Analyzer) checkInfix(n *ast.InfixExpression) typesystem.TypeDef {
	left := a.checkExpression(n.Left)
	right := a.checkExpression(n.Right)
	a.requireInfallible(n.Left, left)
	a.requireInfallible(n.Right, right)

	out := a.infixResult(n.Operator, left.Kind(), right.Kind())
	if left.Abortable() || right.Abortable() {
		out = out.WithAbortable()
	}
	return out
}

func (a *Analyzer) infixResult(op string, l, r *typesystem.Kind) typesystem.TypeDef {
	numeric := typesystem.NewInteger().Union(typesystem.NewFloat())
	boolean := typesystem.NewBoolean()

	switch op {
	case "==", "!=":
		return typesystem.Def(boolean)

	case "&&", "||":
		out := typesystem.Def(boolean)
		if !l.OnlyWithin(boolean) || !r.OnlyWithin(boolean) {
			out = out.WithFallible()
		}
		return out

	case "<", "<=", ">", ">=":
		out := typesystem.Def(boolean)
		if !l.OnlyWithin(numeric) || !r.OnlyWithin(numeric) {
			out = out.WithFallible()
		}
		return out

	case "+":
		result := typesystem.Never()
		if l.ContainsInteger() && r.ContainsInteger() {
			result = result.Union(typesystem.NewInteger())
		}
		if (l.ContainsFloat() && r.Intersects(numeric)) || (r.ContainsFloat() && l.Intersects(numeric)) {
			result = result.Union(typesystem.NewFloat())
		}
		if l.ContainsString() && r.ContainsString() {
			result = result.Union(typesystem.NewString())
		}
		if result.IsNever() {
			result = numeric.Union(typesystem.NewString())
		}
		out := typesystem.Def(result)
		bothNumeric := l.OnlyWithin(numeric) && r.OnlyWithin(numeric)
		bothString := l.OnlyWithin(typesystem.NewString()) && r.OnlyWithin(typesystem.NewString())
		if !bothNumeric && !bothString {
			out = out.WithFallible()
		}
		return out

	case "-", "*":
		result := typesystem.Never()
		if l.ContainsInteger() && r.ContainsInteger() {
			result = result.Union(typesystem.NewInteger())
		}
		if (l.ContainsFloat() && r.Intersects(numeric)) || (r.ContainsFloat() && l.Intersects(numeric)) {
			result = result.Union(typesystem.NewFloat())
		}
		if result.IsNever() {
			result = numeric
		}
		out := typesystem.Def(result)
		if !l.OnlyWithin(numeric) || !r.OnlyWithin(numeric) {
			out = out.WithFallible()
		}
		return out

	case "/":
		// Division stays fallible: the divisor may be zero and literal
		// values are not tracked through the lattice.
		return typesystem.Def(typesystem.NewFloat()).WithFallible()

	default:
		return typesystem.DefAny()
	}
}
