// Package typesystem models the set of runtime kinds and shapes an
// expression can produce. A Kind is a conservative over-approximation: it
// may list more possibilities than the runtime will ever see, never fewer.
// All operations are copy-on-write; a Kind handed out is never mutated.
package typesystem

import (
	"sort"
	"strings"
)

type primitives uint16

const (
	pString primitives = 1 << iota
	pInteger
	pFloat
	pBoolean
	pTimestamp
	pRegex
	pBytes
	pNull

	allPrimitives = pString | pInteger | pFloat | pBoolean | pTimestamp | pRegex | pBytes | pNull
)

// Kind is one entry of the type lattice: a set of possible primitive kinds
// plus optional object/array shapes. The zero value is "never" (no possible
// kind, i.e. unreachable).
type Kind struct {
	prim   primitives
	object *Collection[string]
	array  *Collection[int]
}

func newPrimitive(p primitives) *Kind { return &Kind{prim: p} }

func NewString() *Kind    { return newPrimitive(pString) }
func NewInteger() *Kind   { return newPrimitive(pInteger) }
func NewFloat() *Kind     { return newPrimitive(pFloat) }
func NewBoolean() *Kind   { return newPrimitive(pBoolean) }
func NewTimestamp() *Kind { return newPrimitive(pTimestamp) }
func NewRegex() *Kind     { return newPrimitive(pRegex) }
func NewBytes() *Kind     { return newPrimitive(pBytes) }
func NewNull() *Kind      { return newPrimitive(pNull) }

// Never is the empty entry: no value can have this kind.
func Never() *Kind { return &Kind{} }

// NewObject is a closed object with exactly the given fields.
func NewObject(fields map[string]*Kind) *Kind {
	known := make(map[string]*Kind, len(fields))
	for k, v := range fields {
		known[k] = v.Copy()
	}
	return &Kind{object: &Collection[string]{known: known}}
}

// NewOpenObject is an object with the given known fields plus an unknown
// rest of the given member kind (nil member means "any").
func NewOpenObject(fields map[string]*Kind, rest *Kind) *Kind {
	k := NewObject(fields)
	k.object.unknown = unknownOf(rest)
	return k
}

// NewArray is a closed array with exactly the given elements.
func NewArray(elems ...*Kind) *Kind {
	known := make(map[int]*Kind, len(elems))
	for i, e := range elems {
		known[i] = e.Copy()
	}
	return &Kind{array: &Collection[int]{known: known}}
}

// NewOpenArray is an array of unknown length whose members have the given
// kind (nil means "any").
func NewOpenArray(rest *Kind) *Kind {
	return &Kind{array: &Collection[int]{known: map[int]*Kind{}, unknown: unknownOf(rest)}}
}

// Any is the maximally unknown entry: every primitive kind plus open object
// and array shapes.
func Any() *Kind {
	return &Kind{
		prim:   allPrimitives,
		object: &Collection[string]{known: map[string]*Kind{}, unknown: anyUnknown()},
		array:  &Collection[int]{known: map[int]*Kind{}, unknown: anyUnknown()},
	}
}

// AnyScalar covers every primitive kind but no collections.
func AnyScalar() *Kind { return &Kind{prim: allPrimitives} }

// AnyCollection covers open object and array shapes with no primitives.
func AnyCollection() *Kind {
	return &Kind{
		object: &Collection[string]{known: map[string]*Kind{}, unknown: anyUnknown()},
		array:  &Collection[int]{known: map[int]*Kind{}, unknown: anyUnknown()},
	}
}

func (k *Kind) Copy() *Kind {
	if k == nil {
		return nil
	}
	return &Kind{prim: k.prim, object: k.object.copy(), array: k.array.copy()}
}

// OrNull widens the entry with null.
func (k *Kind) OrNull() *Kind {
	c := k.Copy()
	c.prim |= pNull
	return c
}

func (k *Kind) ContainsString() bool    { return k.prim&pString != 0 }
func (k *Kind) ContainsInteger() bool   { return k.prim&pInteger != 0 }
func (k *Kind) ContainsFloat() bool     { return k.prim&pFloat != 0 }
func (k *Kind) ContainsBoolean() bool   { return k.prim&pBoolean != 0 }
func (k *Kind) ContainsTimestamp() bool { return k.prim&pTimestamp != 0 }
func (k *Kind) ContainsRegex() bool     { return k.prim&pRegex != 0 }
func (k *Kind) ContainsBytes() bool     { return k.prim&pBytes != 0 }
func (k *Kind) ContainsNull() bool      { return k.prim&pNull != 0 }
func (k *Kind) ContainsObject() bool    { return k.object != nil }
func (k *Kind) ContainsArray() bool     { return k.array != nil }

// IsNever reports whether no runtime value can match the entry.
func (k *Kind) IsNever() bool { return k.prim == 0 && k.object == nil && k.array == nil }

// IsAny reports whether every kind is possible, i.e. the entry carries no
// static knowledge at all. Path resolution treats "any" as unknown breadth
// (deferred to the runtime's defensive check) rather than as positive
// knowledge of a non-collection possibility.
func (k *Kind) IsAny() bool {
	return k.prim == allPrimitives && k.object != nil && k.array != nil
}

// IsExclusivelyCollection reports whether every possible kind of the entry
// is object or array.
func (k *Kind) IsExclusivelyCollection() bool {
	return k.prim == 0 && (k.object != nil || k.array != nil)
}

// ContainsNonCollection reports whether any primitive kind is possible.
func (k *Kind) ContainsNonCollection() bool { return k.prim != 0 }

// Intersects reports whether the two entries share at least one possible
// kind. Collection shapes intersect on presence, not structure.
func (k *Kind) Intersects(other *Kind) bool {
	if k.prim&other.prim != 0 {
		return true
	}
	if k.object != nil && other.object != nil {
		return true
	}
	return k.array != nil && other.array != nil
}

// OnlyWithin reports whether every possible kind of k is also possible in
// mask. Collection shapes are compared on presence only; mask shapes are
// treated as covering any member structure.
func (k *Kind) OnlyWithin(mask *Kind) bool {
	if k.prim&^mask.prim != 0 {
		return false
	}
	if k.object != nil && mask.object == nil {
		return false
	}
	if k.array != nil && mask.array == nil {
		return false
	}
	return true
}

// IsExactly reports whether k allows precisely the kinds of mask and nothing
// else, ignoring member structure.
func (k *Kind) IsExactly(mask *Kind) bool {
	return k.OnlyWithin(mask) && mask.prim&^k.prim == 0 &&
		(mask.object == nil) == (k.object == nil) &&
		(mask.array == nil) == (k.array == nil)
}

// Equal is deep structural equality, used by tests and by the store to
// detect no-op joins.
func (k *Kind) Equal(other *Kind) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.prim == other.prim && k.object.equal(other.object) && k.array.equal(other.array)
}

// String renders the possible kinds sorted and joined with " or ", e.g.
// "integer or null". Collection structure is summarized as "object"/"array".
func (k *Kind) String() string {
	if k == nil || k.IsNever() {
		return "never"
	}
	if k.IsAny() {
		return "any"
	}
	var names []string
	for _, p := range []struct {
		bit  primitives
		name string
	}{
		{pString, "string"},
		{pInteger, "integer"},
		{pFloat, "float"},
		{pBoolean, "boolean"},
		{pTimestamp, "timestamp"},
		{pRegex, "regex"},
		{pBytes, "bytes"},
		{pNull, "null"},
	} {
		if k.prim&p.bit != 0 {
			names = append(names, p.name)
		}
	}
	if k.object != nil {
		names = append(names, "object")
	}
	if k.array != nil {
		names = append(names, "array")
	}
	sort.Strings(names)
	return strings.Join(names, " or ")
}
