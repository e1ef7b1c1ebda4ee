package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/remap/internal/pathspec"
)

func sampleKinds() []*Kind {
	return []*Kind{
		NewString(),
		NewInteger().Union(NewFloat()),
		NewNull(),
		NewObject(map[string]*Kind{"a": NewString()}),
		NewOpenObject(map[string]*Kind{"b": NewInteger()}, NewString()),
		NewOpenArray(NewString()),
		Any(),
		Never(),
	}
}

func TestUnionCommutative(t *testing.T) {
	for _, a := range sampleKinds() {
		for _, b := range sampleKinds() {
			assert.True(t, a.Union(b).Equal(b.Union(a)), "union of %s and %s", a, b)
		}
	}
}

func TestUnionAssociative(t *testing.T) {
	ks := sampleKinds()
	for _, a := range ks {
		for _, b := range ks {
			for _, c := range ks {
				left := a.Union(b).Union(c)
				right := a.Union(b.Union(c))
				assert.True(t, left.Equal(right), "(%s+%s)+%s", a, b, c)
			}
		}
	}
}

func TestUnionIdempotent(t *testing.T) {
	for _, a := range sampleKinds() {
		assert.True(t, a.Union(a).Equal(a), "union of %s with itself", a)
	}
}

func TestUnionIsSuperset(t *testing.T) {
	for _, a := range sampleKinds() {
		for _, b := range sampleKinds() {
			joined := a.Union(b)
			assert.True(t, a.OnlyWithin(joined), "%s within %s", a, joined)
			assert.True(t, b.OnlyWithin(joined), "%s within %s", b, joined)
		}
	}
}

func TestNarrowRoundTrip(t *testing.T) {
	wide := NewString().Union(NewInteger()).Union(NewNull())

	narrowed := wide.Narrow(NewString())
	assert.True(t, narrowed.IsExactly(NewString()))
	assert.False(t, narrowed.ContainsInteger())
	assert.False(t, narrowed.ContainsNull())

	// Narrowing to something impossible is the empty entry.
	assert.True(t, wide.Narrow(NewBoolean()).IsNever())
}

func TestIsExclusivelyCollection(t *testing.T) {
	assert.True(t, NewObject(nil).IsExclusivelyCollection())
	assert.True(t, NewOpenArray(nil).IsExclusivelyCollection())
	assert.True(t, AnyCollection().IsExclusivelyCollection())
	assert.False(t, NewObject(nil).OrNull().IsExclusivelyCollection())
	assert.False(t, NewInteger().IsExclusivelyCollection())
	assert.False(t, Never().IsExclusivelyCollection())
	assert.False(t, Any().IsExclusivelyCollection())
}

func TestAnyIsMaximallyUnknown(t *testing.T) {
	assert.True(t, Any().IsAny())
	assert.False(t, AnyScalar().IsAny())
	assert.False(t, AnyCollection().IsAny())
	assert.True(t, AnyScalar().Union(AnyCollection()).IsAny())
}

func TestFieldProjection(t *testing.T) {
	obj := NewOpenObject(map[string]*Kind{"known": NewInteger()}, NewString())

	known := obj.Field("known")
	assert.True(t, known.IsExactly(NewInteger()))

	// Unlisted members of an open object may be absent: null joins in.
	rest := obj.Field("other")
	assert.True(t, rest.ContainsString())
	assert.True(t, rest.ContainsNull())

	// Unlisted members of a closed object are definitely absent.
	closed := NewObject(map[string]*Kind{"a": NewString()})
	assert.True(t, closed.Field("b").IsExactly(NewNull()))
}

func TestAtPathCoalesce(t *testing.T) {
	obj := NewObject(map[string]*Kind{
		"host":     NewString(),
		"hostname": NewInteger(),
	})
	got := obj.AtPath(pathspec.Path{pathspec.Coalesce{"host", "hostname"}})
	assert.True(t, got.ContainsString())
	assert.True(t, got.ContainsInteger())
}

func TestInsertAtPath(t *testing.T) {
	base := NewObject(map[string]*Kind{"keep": NewString()})
	out := base.InsertAtPath(pathspec.MustParse("nested.field"), NewFloat())

	// Sibling survives.
	assert.True(t, out.Field("keep").IsExactly(NewString()))
	// The inserted path resolves exactly.
	got := out.AtPath(pathspec.MustParse("nested.field"))
	assert.True(t, got.IsExactly(NewFloat()))
	// The original is untouched (copy on write).
	require.True(t, base.Field("nested").IsExactly(NewNull()))
}

func TestInsertAtPathIndex(t *testing.T) {
	out := Never().InsertAtPath(pathspec.MustParse("items[2]"), NewBoolean())
	assert.True(t, out.IsExclusivelyCollection())
	got := out.AtPath(pathspec.MustParse("items[2]"))
	assert.True(t, got.IsExactly(NewBoolean()))
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "never", Never().String())
	assert.Equal(t, "any", Any().String())
	assert.Equal(t, "integer or string", NewString().Union(NewInteger()).String())
	assert.Equal(t, "null or object", NewObject(nil).OrNull().String())
}

func TestTypeDefEffects(t *testing.T) {
	def := Def(NewString()).WithFallible()
	assert.True(t, def.Fallible())
	assert.False(t, def.Abortable())

	discharged := def.Infallible().WithAbortable()
	assert.False(t, discharged.Fallible())
	assert.True(t, discharged.Abortable())

	joined := def.Union(Def(NewInteger()))
	assert.True(t, joined.Fallible())
	assert.True(t, joined.Kind().ContainsString())
	assert.True(t, joined.Kind().ContainsInteger())
}
