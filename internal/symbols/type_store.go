// Package symbols holds the compile-time type-definition store: a stack of
// block scopes mapping variable bindings, plus the external event root, to
// their current lattice entry.
package symbols

import (
	"github.com/eventflow/remap/internal/pathspec"
	"github.com/eventflow/remap/internal/typesystem"
)

type scope map[string]typesystem.TypeDef

// TypeStore tracks bindings through the single checking pass. Lattice
// entries are copy-on-write, so forked stores may share entries freely.
type TypeStore struct {
	scopes []scope
	event  typesystem.TypeDef
}

// NewTypeStore starts with one scope and an event root typed as an open
// object of unknown members: the pipeline hands us arbitrary events.
func NewTypeStore() *TypeStore {
	return &TypeStore{
		scopes: []scope{{}},
		event:  typesystem.Def(typesystem.NewOpenObject(nil, nil)),
	}
}

// Lookup searches scopes innermost to outermost. An unbound name resolves
// to the maximally unknown entry rather than failing; the error, if any,
// surfaces at runtime.
func (s *TypeStore) Lookup(name string) (typesystem.TypeDef, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if def, ok := s.scopes[i][name]; ok {
			return def, true
		}
	}
	return typesystem.DefAny(), false
}

// Event returns the event root's current entry.
func (s *TypeStore) Event() typesystem.TypeDef { return s.event }

// Assign records a write to a binding. An empty path replaces the binding's
// entry; otherwise the entry is structurally overwritten at exactly that
// path, leaving siblings untouched. An undeclared binding written through a
// path is created implicitly (the resolver has already vetted the path):
// the runtime materializes the container, so the new entry carries only the
// inserted structure.
func (s *TypeStore) Assign(name string, path pathspec.Path, def typesystem.TypeDef) {
	frame := s.frameOf(name)
	if path.IsRoot() {
		frame[name] = def
		return
	}
	base, declared := s.Lookup(name)
	baseKind := base.Kind()
	if !declared {
		baseKind = typesystem.Never()
	}
	frame[name] = def.WithKind(baseKind.InsertAtPath(path, def.Kind()))
}

// AssignEvent records a write to the event root at a path.
func (s *TypeStore) AssignEvent(path pathspec.Path, def typesystem.TypeDef) {
	s.event = def.WithKind(s.event.Kind().InsertAtPath(path, def.Kind()))
}

// frameOf returns the scope a binding lives in, or the innermost scope for
// new bindings.
func (s *TypeStore) frameOf(name string) scope {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i][name]; ok {
			return s.scopes[i]
		}
	}
	return s.scopes[len(s.scopes)-1]
}

func (s *TypeStore) PushScope() {
	s.scopes = append(s.scopes, scope{})
}

func (s *TypeStore) PopScope() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Fork copies the store so a branch arm can be checked in isolation.
// Entries themselves are immutable and shared.
func (s *TypeStore) Fork() *TypeStore {
	scopes := make([]scope, len(s.scopes))
	for i, frame := range s.scopes {
		copied := make(scope, len(frame))
		for name, def := range frame {
			copied[name] = def
		}
		scopes[i] = copied
	}
	return &TypeStore{scopes: scopes, event: s.event}
}

// Join reunifies two forks of the same store after mutually exclusive
// branches: each binding's entry becomes the join of the two exit states. A
// binding assigned in only one arm joins with what the other arm still sees
// for it — its pre-branch entry, or the unknown entry if it never existed.
func Join(left, right *TypeStore) *TypeStore {
	depth := len(left.scopes)
	if len(right.scopes) < depth {
		depth = len(right.scopes)
	}
	scopes := make([]scope, depth)
	for i := 0; i < depth; i++ {
		frame := scope{}
		for name := range left.scopes[i] {
			frame[name] = joinBinding(left, right, i, name)
		}
		for name := range right.scopes[i] {
			if _, done := frame[name]; !done {
				frame[name] = joinBinding(left, right, i, name)
			}
		}
		scopes[i] = frame
	}
	return &TypeStore{
		scopes: scopes,
		event:  left.event.Union(right.event),
	}
}

func joinBinding(left, right *TypeStore, frame int, name string) typesystem.TypeDef {
	a, ok := left.scopes[frame][name]
	if !ok {
		a, _ = left.Lookup(name)
	}
	b, ok := right.scopes[frame][name]
	if !ok {
		b, _ = right.Lookup(name)
	}
	return a.Union(b)
}

// ReplaceWith adopts another store's state in place, used after reunifying
// branch forks.
func (s *TypeStore) ReplaceWith(other *TypeStore) {
	s.scopes = other.scopes
	s.event = other.event
}
