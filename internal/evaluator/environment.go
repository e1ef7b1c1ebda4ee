package evaluator

import "github.com/eventflow/remap/internal/value"

// Environment is the runtime variable store: a chain of block scopes
// mirroring the compile-time store, holding concrete values. One evaluation
// owns its environment exclusively, so there is no locking.
type Environment struct {
	store map[string]value.Value
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: map[string]value.Value{}}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: map[string]value.Value{}, outer: outer}
}

// Get searches scopes innermost to outermost.
func (e *Environment) Get(name string) (value.Value, bool) {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.store[name]; ok {
			return v, true
		}
	}
	return value.Null{}, false
}

// Set updates the scope a binding already lives in, or defines it in the
// innermost scope, matching the compile-time store's placement.
func (e *Environment) Set(name string, v value.Value) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = v
			return
		}
	}
	e.store[name] = v
}
