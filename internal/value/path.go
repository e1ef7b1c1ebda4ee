package value

import (
	"fmt"

	"github.com/eventflow/remap/internal/pathspec"
)

// Get reads the value at a path. The second return distinguishes absence
// from a stored null: (Null{}, false) means nothing exists at the path.
// Reads never fail; walking through a non-collection simply reports absence.
func Get(root Value, path pathspec.Path) (Value, bool) {
	cur := root
	for _, seg := range path {
		switch s := seg.(type) {
		case pathspec.Field:
			obj, ok := cur.(*Object)
			if !ok {
				return Null{}, false
			}
			child, ok := obj.Pairs[string(s)]
			if !ok {
				return Null{}, false
			}
			cur = child
		case pathspec.Index:
			arr, ok := cur.(*Array)
			if !ok {
				return Null{}, false
			}
			i := int(s)
			if i < 0 {
				i += len(arr.Elements)
			}
			if i < 0 || i >= len(arr.Elements) {
				return Null{}, false
			}
			cur = arr.Elements[i]
		case pathspec.Coalesce:
			obj, ok := cur.(*Object)
			if !ok {
				return Null{}, false
			}
			var child Value
			found := false
			for _, alt := range s {
				if c, ok := obj.Pairs[alt]; ok {
					child, found = c, true
					break
				}
			}
			if !found {
				return Null{}, false
			}
			cur = child
		}
	}
	return cur, true
}

// Insert writes v at a path, mutating root in place where possible, and
// returns the (possibly replaced) root. Every parent step re-verifies the
// parent is a collection of the right shape: the checker proves this
// statically except where the static type had unknown breadth, so a failure
// here is the defensive runtime error of that case, never a panic. Missing
// intermediate members are created; array writes beyond the current length
// pad with null.
func Insert(root Value, path pathspec.Path, v Value) (Value, error) {
	if len(path) == 0 {
		return v, nil
	}

	parent := root
	for i, seg := range path {
		last := i == len(path)-1
		switch s := seg.(type) {
		case pathspec.Field:
			obj, ok := parent.(*Object)
			if !ok {
				return root, pathError(path, i, "object", parent)
			}
			if last {
				obj.Pairs[string(s)] = v
				return root, nil
			}
			child, ok := obj.Pairs[string(s)]
			if !ok || !IsCollection(child) {
				if ok && !IsCollection(child) {
					return root, pathError(path, i+1, "object or array", child)
				}
				child = containerFor(path[i+1])
				obj.Pairs[string(s)] = child
			}
			parent = child
		case pathspec.Index:
			arr, ok := parent.(*Array)
			if !ok {
				return root, pathError(path, i, "array", parent)
			}
			idx := int(s)
			if idx < 0 {
				return root, fmt.Errorf("cannot write through negative index %d", idx)
			}
			for len(arr.Elements) <= idx {
				arr.Elements = append(arr.Elements, Null{})
			}
			if last {
				arr.Elements[idx] = v
				return root, nil
			}
			child := arr.Elements[idx]
			if !IsCollection(child) {
				if _, isNull := child.(Null); !isNull {
					return root, pathError(path, i+1, "object or array", child)
				}
				child = containerFor(path[i+1])
				arr.Elements[idx] = child
			}
			parent = child
		case pathspec.Coalesce:
			return root, fmt.Errorf("cannot write through coalesce segment %s", s)
		}
	}
	return root, nil
}

func containerFor(next pathspec.Segment) Value {
	if _, ok := next.(pathspec.Index); ok {
		return NewArray()
	}
	return NewObject()
}

func pathError(path pathspec.Path, i int, want string, got Value) error {
	return fmt.Errorf("path %s: segment %d expects %s, found %s", path, i, want, got.Type())
}
