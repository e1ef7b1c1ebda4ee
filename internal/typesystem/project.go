package typesystem

import "github.com/eventflow/remap/internal/pathspec"

// Field projects the object member kind for a name. Known members resolve to
// their listed kind; unlisted members of an open object resolve to the
// unknown rest widened with null (the member may be absent at runtime);
// unlisted members of a closed object are definitely absent and resolve to
// null. When the entry has no object shape at all the projection is
// best-effort "any" for diagnostics; callers gate legality separately via
// IsExclusivelyCollection.
func (k *Kind) Field(name string) *Kind {
	if k.object == nil {
		return Any()
	}
	child, known := k.object.member(name)
	if known {
		return child
	}
	return child.OrNull()
}

// Index projects the array member kind for a position, with the same
// absence rules as Field.
func (k *Kind) Index(i int) *Kind {
	if k.array == nil {
		return Any()
	}
	child, known := k.array.member(i)
	if known {
		return child
	}
	return child.OrNull()
}

// AtPath projects the entry through every segment of a path. Coalesce
// segments resolve to the join of their alternatives.
func (k *Kind) AtPath(path pathspec.Path) *Kind {
	cur := k
	for _, seg := range path {
		cur = cur.Segment(seg)
	}
	return cur.Copy()
}

// Segment projects one path segment.
func (k *Kind) Segment(seg pathspec.Segment) *Kind {
	switch s := seg.(type) {
	case pathspec.Field:
		return k.Field(string(s))
	case pathspec.Index:
		return k.Index(int(s))
	case pathspec.Coalesce:
		out := Never()
		for _, alt := range s {
			out = out.Union(k.Field(alt))
		}
		return out
	default:
		return Any()
	}
}

// InsertAtPath overwrites the entry at exactly the given path with child,
// preserving sibling structure. Intermediate segments gain a known
// object/array member; kinds the parent could otherwise be are kept, which
// stays a conservative superset.
func (k *Kind) InsertAtPath(path pathspec.Path, child *Kind) *Kind {
	if len(path) == 0 {
		return child.Copy()
	}

	out := k.Copy()
	if out == nil {
		out = Never()
	}

	rest := path[1:]
	switch s := path[0].(type) {
	case pathspec.Field:
		if out.object == nil {
			out.object = &Collection[string]{known: map[string]*Kind{}}
		} else {
			out.object = out.object.copy()
		}
		existing, _ := out.object.member(string(s))
		out.object.known[string(s)] = existing.InsertAtPath(rest, child)
	case pathspec.Index:
		if out.array == nil {
			out.array = &Collection[int]{known: map[int]*Kind{}}
		} else {
			out.array = out.array.copy()
		}
		existing, _ := out.array.member(int(s))
		out.array.known[int(s)] = existing.InsertAtPath(rest, child)
	case pathspec.Coalesce:
		// Write paths cannot contain coalesce segments (the parser rejects
		// them), but stay conservative if one slips through: the write may
		// land under any alternative.
		if out.object == nil {
			out.object = &Collection[string]{known: map[string]*Kind{}}
		} else {
			out.object = out.object.copy()
		}
		for _, alt := range s {
			existing, _ := out.object.member(alt)
			out.object.known[alt] = existing.Union(existing.InsertAtPath(rest, child))
		}
	}
	return out
}
