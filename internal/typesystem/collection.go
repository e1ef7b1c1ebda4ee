package typesystem

import "cmp"

// Unknown describes the members of a collection beyond its known keys or
// indices. A nil *Unknown on a Collection means the collection is closed
// (exact width): unlisted members are definitely absent.
type Unknown struct {
	any  bool  // member may be any value of any kind
	kind *Kind // exact member kind when !any
}

func anyUnknown() *Unknown { return &Unknown{any: true} }

func unknownOf(k *Kind) *Unknown {
	if k == nil {
		return anyUnknown()
	}
	return &Unknown{kind: k.Copy()}
}

// Kind materializes the member kind covered by the unknown rest.
func (u *Unknown) Kind() *Kind {
	if u == nil {
		return Never()
	}
	if u.any {
		return Any()
	}
	return u.kind.Copy()
}

func (u *Unknown) copy() *Unknown {
	if u == nil {
		return nil
	}
	return &Unknown{any: u.any, kind: u.kind.Copy()}
}

func (u *Unknown) equal(other *Unknown) bool {
	if u == nil || other == nil {
		return u == other
	}
	if u.any != other.any {
		return false
	}
	return u.any || u.kind.Equal(other.kind)
}

// union keeps the unknown rest of either side; a side with no rest
// contributes nothing (its unlisted members are absent, which projection
// reports as null).
func (u *Unknown) union(other *Unknown) *Unknown {
	switch {
	case u == nil:
		return other.copy()
	case other == nil:
		return u.copy()
	case u.any || other.any:
		return anyUnknown()
	default:
		return &Unknown{kind: u.kind.Union(other.kind)}
	}
}

// Collection is the structural shape of an object (string keys) or array
// (integer indices): known members with individual kinds plus an optional
// unknown rest.
type Collection[K cmp.Ordered] struct {
	known   map[K]*Kind
	unknown *Unknown
}

func (c *Collection[K]) copy() *Collection[K] {
	if c == nil {
		return nil
	}
	known := make(map[K]*Kind, len(c.known))
	for k, v := range c.known {
		known[k] = v.Copy()
	}
	return &Collection[K]{known: known, unknown: c.unknown.copy()}
}

func (c *Collection[K]) equal(other *Collection[K]) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.known) != len(other.known) || !c.unknown.equal(other.unknown) {
		return false
	}
	for k, v := range c.known {
		o, ok := other.known[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

// IsClosed reports whether the collection has exact width: every member is
// listed in known.
func (c *Collection[K]) IsClosed() bool { return c != nil && c.unknown == nil }

// member resolves a known key, falling back to the unknown rest. The second
// return reports whether the member definitely exists.
func (c *Collection[K]) member(key K) (*Kind, bool) {
	if child, ok := c.known[key]; ok {
		return child.Copy(), true
	}
	if c.unknown != nil {
		return c.unknown.Kind(), false
	}
	return NewNull(), false
}

// union merges two collection shapes describing mutually exclusive
// possibilities. A key known on one side only joins with the other side's
// projection for it: the unknown rest widened with null, or plain null when
// that side is closed. The widening keeps the result a superset (the member
// may be absent on the side that never listed it) and makes union
// associative.
func (c *Collection[K]) union(other *Collection[K]) *Collection[K] {
	if c == nil {
		return other.copy()
	}
	if other == nil {
		return c.copy()
	}

	known := make(map[K]*Kind, len(c.known)+len(other.known))
	for k, v := range c.known {
		if o, ok := other.known[k]; ok {
			known[k] = v.Union(o)
		} else {
			known[k] = v.Union(other.unknown.Kind().OrNull())
		}
	}
	for k, o := range other.known {
		if _, done := known[k]; done {
			continue
		}
		known[k] = o.Union(c.unknown.Kind().OrNull())
	}

	return &Collection[K]{known: known, unknown: c.unknown.union(other.unknown)}
}
