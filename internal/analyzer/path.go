package analyzer

import (
	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/diagnostics"
	"github.com/eventflow/remap/internal/pathspec"
	"github.com/eventflow/remap/internal/token"
	"github.com/eventflow/remap/internal/typesystem"
)

// resolveRead types a query node. Reads never fail at runtime (absence is
// null), but the parent-segment legality rule applies identically to reads
// and writes.
func (a *Analyzer) resolveRead(q *ast.Query) typesystem.TypeDef {
	var root *typesystem.Kind
	if q.External {
		root = a.store.Event().Kind()
	} else {
		def, _ := a.store.Lookup(q.Variable)
		root = def.Kind()
	}

	kind, ok := a.walkPath(root, q.Path, q.GetToken(), q.String())
	if !ok {
		return typesystem.DefAny()
	}
	return typesystem.Def(kind)
}

// resolveWrite validates an assignment target's path against the binding's
// current entry. The final segment is the location being replaced and
// carries no constraint of its own; every step into it must go through a
// value that can only be a collection.
func (a *Analyzer) resolveWrite(target *ast.AssignTarget) bool {
	for _, seg := range target.Path {
		if _, ok := seg.(pathspec.Coalesce); ok {
			a.diags.Add(diagnostics.New(diagnostics.InvalidAssignmentTarget, target.Token,
				"cannot assign through the coalesce segment %s", seg))
			return false
		}
	}

	var root *typesystem.Kind
	if target.External {
		root = a.store.Event().Kind()
	} else {
		def, declared := a.store.Lookup(target.Variable)
		if !declared {
			// Implicit creation of an undeclared root: the runtime
			// materializes the missing containers, so any path is writable.
			return true
		}
		root = def.Kind()
	}

	_, ok := a.walkPath(root, target.Path, target.Token, target.String())
	return ok
}

// walkPath steps an entry through a path. At every step the current entry
// must be exclusively a collection; the maximally unknown entry passes (the
// runtime re-verifies defensively), positive knowledge of a non-collection
// possibility rejects the whole path.
func (a *Analyzer) walkPath(root *typesystem.Kind, path pathspec.Path, tok token.Token, rendered string) (*typesystem.Kind, bool) {
	cur := root
	for i, seg := range path {
		if !a.stepAllowed(cur) {
			a.diags.Add(diagnostics.New(diagnostics.ParentPathRejectsMutation, tok,
				"segment %d of %s steps into a value that can be %s, not exclusively an object or array",
				i, rendered, cur).
				WithKinds(cur.String()).
				WithSuggestion("object!(...) the parent first, or assign a collection to it"))
			return nil, false
		}
		cur = cur.Segment(seg)
	}
	return cur.Copy(), true
}

func (a *Analyzer) stepAllowed(k *typesystem.Kind) bool {
	if k.IsAny() || k.IsNever() {
		return true
	}
	return k.IsExclusivelyCollection()
}
