// Package registry is the immutable table of callable functions: per
// function a signature of accepted parameter kind sets, a result type as a
// function of argument kinds, a fallibility predicate, and the concrete
// implementation. The table is built once at startup and shared read-only
// by checker and evaluator.
package registry

import (
	"sort"

	"github.com/eventflow/remap/internal/typesystem"
	"github.com/eventflow/remap/internal/value"
)

// Parameter declares one argument slot. Kinds is the accepted set: an
// argument whose static kinds are disjoint from it is a compile error. Safe
// is the always-succeeds subset: an argument not statically within Safe
// makes the call fallible. A nil Safe means Safe equals Kinds.
type Parameter struct {
	Name     string
	Kinds    *typesystem.Kind
	Safe     *typesystem.Kind
	Required bool
}

// SafeKinds returns the always-succeeds set for the parameter.
func (p Parameter) SafeKinds() *typesystem.Kind {
	if p.Safe != nil {
		return p.Safe
	}
	return p.Kinds
}

// Function is one registry entry. Absent optional arguments reach both
// Return and Impl as null.
type Function struct {
	Name   string
	Params []Parameter

	// Return computes the success result kind for the given argument kinds,
	// aligned with Params.
	Return func(args []*typesystem.Kind) *typesystem.Kind

	// AlwaysFallible marks functions that can fail regardless of argument
	// types (parsers, assertions).
	AlwaysFallible bool

	// Fallible, when set, adds function-specific fallibility on top of the
	// per-parameter Safe check.
	Fallible func(args []*typesystem.Kind) bool

	// Impl evaluates the call against concrete values, aligned with Params.
	Impl func(args []value.Value) (value.Value, error)
}

// FallibleFor reports whether a call with the given argument kinds can fail
// at runtime: the declared fallibility contract consumed by the checker.
func (f *Function) FallibleFor(args []*typesystem.Kind) bool {
	if f.AlwaysFallible {
		return true
	}
	for i, p := range f.Params {
		if i >= len(args) || args[i] == nil {
			continue
		}
		if !args[i].OnlyWithin(p.SafeKinds()) {
			return true
		}
	}
	if f.Fallible != nil {
		return f.Fallible(args)
	}
	return false
}

// Registry is the process-wide function table. Immutable after New.
type Registry struct {
	funcs map[string]*Function
}

// New builds the builtin table.
func New() *Registry {
	r := &Registry{funcs: map[string]*Function{}}
	for _, fns := range [][]*Function{coreFunctions(), stringFunctions(), codecFunctions()} {
		for _, fn := range fns {
			r.funcs[fn.Name] = fn
		}
	}
	return r
}

func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// returns is a helper for constant result kinds.
func returns(k *typesystem.Kind) func([]*typesystem.Kind) *typesystem.Kind {
	return func([]*typesystem.Kind) *typesystem.Kind { return k.Copy() }
}

func scalarNoRegexMask() *typesystem.Kind {
	mask := typesystem.NewString().
		Union(typesystem.NewInteger()).
		Union(typesystem.NewFloat()).
		Union(typesystem.NewBoolean()).
		Union(typesystem.NewTimestamp()).
		Union(typesystem.NewBytes()).
		Union(typesystem.NewNull())
	return mask
}
