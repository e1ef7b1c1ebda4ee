// Package evaluator executes an annotated expression tree against one live
// event. Recoverable failures travel as ordinary errors and are only
// reachable through the coalesce and dual-capture forms; an abort is a
// distinct fatal outcome that ends the current event's run without touching
// the host or other events.
package evaluator

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/eventflow/remap/internal/analyzer"
	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/pathspec"
	"github.com/eventflow/remap/internal/registry"
	"github.com/eventflow/remap/internal/token"
	"github.com/eventflow/remap/internal/value"
)

// AbortError is the fatal outcome of the abort form, or of a defensive
// runtime check failing in a position the checker could not fully prove.
type AbortError struct {
	Token token.Token
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("aborted [%d:%d]: %v", e.Token.Line, e.Token.Column, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// IsAbort reports whether an evaluation error is the fatal abort outcome.
func IsAbort(err error) bool {
	var abort *AbortError
	return errors.As(err, &abort)
}

// Evaluator holds the immutable pieces shared across events: the function
// table and the checker's annotations.
type Evaluator struct {
	registry *registry.Registry
	types    analyzer.TypeMap
}

func New(reg *registry.Registry, types analyzer.TypeMap) *Evaluator {
	return &Evaluator{registry: reg, types: types}
}

// Run evaluates the program against one event and returns the mutated event
// and the program's final value. The event is mutated in place; on abort the
// partially mutated event is returned alongside the error.
func (e *Evaluator) Run(prog *ast.Program, event value.Value) (value.Value, value.Value, error) {
	x := &execution{Evaluator: e, event: event}
	env := NewEnvironment()

	var result value.Value = value.Null{}
	for _, stmt := range prog.Statements {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			continue
		}
		v, err := x.eval(es.Expression, env)
		if err != nil {
			return x.event, value.Null{}, err
		}
		result = v
	}
	return x.event, result, nil
}

// execution is the per-event mutable state: the event root can be replaced
// wholesale by a root assignment.
type execution struct {
	*Evaluator
	event value.Value
}

func (x *execution) eval(node ast.Expression, env *Environment) (value.Value, error) {
	switch n := node.(type) {
	case *ast.StringLiteral:
		return &value.String{Value: n.Value}, nil
	case *ast.IntegerLiteral:
		return &value.Integer{Value: n.Value}, nil
	case *ast.FloatLiteral:
		return &value.Float{Value: n.Value}, nil
	case *ast.BooleanLiteral:
		return &value.Boolean{Value: n.Value}, nil
	case *ast.NullLiteral:
		return value.Null{}, nil
	case *ast.RegexLiteral:
		re, err := regexp.Compile(n.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		return &value.Regex{Value: re}, nil

	case *ast.ObjectLiteral:
		obj := value.NewObject()
		for _, entry := range n.Entries {
			v, err := x.eval(entry.Value, env)
			if err != nil {
				return nil, err
			}
			obj.Pairs[entry.Key] = v
		}
		return obj, nil

	case *ast.ArrayLiteral:
		arr := &value.Array{Elements: make([]value.Value, len(n.Elements))}
		for i, elem := range n.Elements {
			v, err := x.eval(elem, env)
			if err != nil {
				return nil, err
			}
			arr.Elements[i] = v
		}
		return arr, nil

	case *ast.Query:
		return x.evalQuery(n, env), nil

	case *ast.PrefixExpression:
		return x.evalPrefix(n, env)

	case *ast.InfixExpression:
		return x.evalInfix(n, env)

	case *ast.CallExpression:
		return x.evalCall(n, env)

	case *ast.MustExpression:
		v, err := x.eval(n.Expression, env)
		if err != nil {
			var abort *AbortError
			if errors.As(err, &abort) {
				return nil, err
			}
			return nil, &AbortError{Token: n.Token, Err: err}
		}
		return v, nil

	case *ast.CoalesceExpression:
		v, err := x.eval(n.Left, env)
		if err == nil {
			return v, nil
		}
		if IsAbort(err) {
			return nil, err
		}
		return x.eval(n.Right, env)

	case *ast.IfExpression:
		return x.evalIf(n, env)

	case *ast.BlockExpression:
		return x.evalBlock(n, env)

	case *ast.AssignmentExpression:
		return x.evalAssignment(n, env)

	case *ast.InfallibleAssignmentExpression:
		return x.evalInfallibleAssignment(n, env)

	default:
		return nil, fmt.Errorf("cannot evaluate %T", node)
	}
}

// evalQuery reads a path; absence yields null, never an error.
func (x *execution) evalQuery(n *ast.Query, env *Environment) value.Value {
	root := x.event
	if !n.External {
		base, ok := env.Get(n.Variable)
		if !ok {
			return value.Null{}
		}
		root = base
	}
	v, ok := value.Get(root, n.Path)
	if !ok {
		return value.Null{}
	}
	return v
}

func (x *execution) evalIf(n *ast.IfExpression, env *Environment) (value.Value, error) {
	cond, err := x.eval(n.Condition, env)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(*value.Boolean)
	if !ok {
		// The checker requires a boolean predicate; reaching this means the
		// static type had unknown breadth.
		return nil, &AbortError{Token: n.Condition.GetToken(),
			Err: fmt.Errorf("the condition resolved to %s, not boolean", cond.Type())}
	}
	if b.Value {
		return x.evalBlock(n.Consequence, env)
	}
	if n.Alternative != nil {
		return x.evalBlock(n.Alternative, env)
	}
	return value.Null{}, nil
}

func (x *execution) evalBlock(n *ast.BlockExpression, env *Environment) (value.Value, error) {
	scoped := NewEnclosedEnvironment(env)
	var result value.Value = value.Null{}
	for _, stmt := range n.Statements {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			continue
		}
		v, err := x.eval(es.Expression, scoped)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (x *execution) evalCall(n *ast.CallExpression, env *Environment) (value.Value, error) {
	fn, ok := x.registry.Lookup(n.Name)
	if !ok {
		return nil, &AbortError{Token: n.Token, Err: fmt.Errorf("unknown function %q", n.Name)}
	}

	args := make([]value.Value, len(fn.Params))
	for i := range args {
		args[i] = value.Null{}
	}

	next := 0
	for _, arg := range n.Arguments {
		slot := -1
		if arg.Name == "" {
			slot = next
			next++
		} else {
			for i, p := range fn.Params {
				if p.Name == arg.Name {
					slot = i
					break
				}
			}
			if slot >= next {
				next = slot + 1
			}
		}
		if slot < 0 || slot >= len(args) {
			continue
		}
		v, err := x.eval(arg.Value, env)
		if err != nil {
			return nil, err
		}
		args[slot] = v
	}

	return fn.Impl(args)
}

func (x *execution) evalAssignment(n *ast.AssignmentExpression, env *Environment) (value.Value, error) {
	v, err := x.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := x.assign(n.Target, v, env); err != nil {
		return nil, err
	}
	return v, nil
}

// evalInfallibleAssignment binds both targets regardless of success: err is
// null on success and the failure text otherwise; ok falls back to the
// discharge default of the expression's success type.
func (x *execution) evalInfallibleAssignment(n *ast.InfallibleAssignmentExpression, env *Environment) (value.Value, error) {
	var okVal, errVal value.Value

	v, err := x.eval(n.Value, env)
	switch {
	case err == nil:
		okVal, errVal = v, value.Null{}
	case IsAbort(err):
		return nil, err
	default:
		okVal = value.DefaultFor(x.types[n.Value].Kind())
		errVal = &value.String{Value: err.Error()}
	}

	if err := x.assign(n.Ok, okVal, env); err != nil {
		return nil, err
	}
	if err := x.assign(n.Err, errVal, env); err != nil {
		return nil, err
	}
	return okVal, nil
}

// assign writes a value at the target. A non-collection parent at runtime is
// only possible where the static type had unknown breadth; the defensive
// re-verification inside value.Insert turns that into a fatal abort rather
// than a crash.
func (x *execution) assign(target *ast.AssignTarget, v value.Value, env *Environment) error {
	switch {
	case target.Noop:
		return nil

	case target.External:
		if target.Path.IsRoot() {
			x.event = v
			return nil
		}
		root, err := value.Insert(x.event, target.Path, v)
		if err != nil {
			return &AbortError{Token: target.Token, Err: err}
		}
		x.event = root
		return nil

	default:
		if target.Path.IsRoot() {
			env.Set(target.Variable, v)
			return nil
		}
		base, bound := env.Get(target.Variable)
		if !bound {
			base = containerFor(target.Path[0])
		}
		root, err := value.Insert(base, target.Path, v)
		if err != nil {
			return &AbortError{Token: target.Token, Err: err}
		}
		env.Set(target.Variable, root)
		return nil
	}
}

func containerFor(first pathspec.Segment) value.Value {
	if _, ok := first.(pathspec.Index); ok {
		return value.NewArray()
	}
	return value.NewObject()
}
