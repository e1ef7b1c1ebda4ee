package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/remap/internal/typesystem"
	"github.com/eventflow/remap/internal/value"
)

func TestLookup(t *testing.T) {
	r := New()

	_, ok := r.Lookup("to_string")
	assert.True(t, ok)

	_, ok = r.Lookup("no_such_function")
	assert.False(t, ok)

	names := r.Names()
	assert.Contains(t, names, "split")
	assert.Contains(t, names, "parse_json")
	assert.Contains(t, names, "uuid_v4")
}

func TestFallibleForSafeSubset(t *testing.T) {
	r := New()
	toInt, _ := r.Lookup("to_int")

	// An integer argument is always convertible.
	assert.False(t, toInt.FallibleFor([]*typesystem.Kind{typesystem.NewInteger()}))

	// A string may or may not parse.
	assert.True(t, toInt.FallibleFor([]*typesystem.Kind{typesystem.NewString()}))

	// Unknown breadth is fallible.
	assert.True(t, toInt.FallibleFor([]*typesystem.Kind{typesystem.Any()}))

	// A nil slot (absent optional argument) adds nothing.
	assert.False(t, toInt.FallibleFor([]*typesystem.Kind{nil}))
}

func TestAlwaysFallible(t *testing.T) {
	r := New()
	parse, _ := r.Lookup("parse_json")
	assert.True(t, parse.FallibleFor([]*typesystem.Kind{typesystem.NewString()}))
}

func TestAssertionNarrowsReturnType(t *testing.T) {
	r := New()
	str, _ := r.Lookup("string")

	got := str.Return([]*typesystem.Kind{typesystem.NewString().Union(typesystem.NewNull())})
	assert.True(t, got.IsExactly(typesystem.NewString()))

	// Disjoint static type still returns the asserted kind for annotation.
	got = str.Return([]*typesystem.Kind{typesystem.NewInteger()})
	assert.True(t, got.IsExactly(typesystem.NewString()))
}

func TestAssertionImpl(t *testing.T) {
	r := New()
	str, _ := r.Lookup("string")

	v, err := str.Impl([]value.Value{&value.String{Value: "ok"}})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, v.String())

	_, err = str.Impl([]value.Value{&value.Integer{Value: 3}})
	assert.Error(t, err)
}

func TestSplitImpl(t *testing.T) {
	r := New()
	split, _ := r.Lookup("split")

	v, err := split.Impl([]value.Value{
		&value.String{Value: "a b c"},
		&value.String{Value: " "},
		value.Null{},
	})
	require.NoError(t, err)
	arr := v.(*value.Array)
	require.Len(t, arr.Elements, 3)
	assert.Equal(t, `"c"`, arr.Elements[2].String())

	v, err = split.Impl([]value.Value{
		&value.String{Value: "a b c"},
		&value.String{Value: " "},
		&value.Integer{Value: 2},
	})
	require.NoError(t, err)
	assert.Len(t, v.(*value.Array).Elements, 2)
}

func TestJoinImplRejectsMixedElements(t *testing.T) {
	r := New()
	join, _ := r.Lookup("join")

	_, err := join.Impl([]value.Value{
		&value.Array{Elements: []value.Value{&value.String{Value: "a"}, &value.Integer{Value: 1}}},
		&value.String{Value: ","},
	})
	assert.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	r := New()
	parse, _ := r.Lookup("parse_json")
	encode, _ := r.Lookup("encode_json")

	v, err := parse.Impl([]value.Value{&value.String{Value: `{"a": [1, 2]}`}})
	require.NoError(t, err)

	out, err := encode.Impl([]value.Value{v})
	require.NoError(t, err)
	assert.Equal(t, `"{\"a\":[1,2]}"`, out.String())

	_, err = parse.Impl([]value.Value{&value.String{Value: "{broken"}})
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	r := New()
	parse, _ := r.Lookup("parse_yaml")

	v, err := parse.Impl([]value.Value{&value.String{Value: "a: 1\nb: [x, y]\n"}})
	require.NoError(t, err)
	obj := v.(*value.Object)
	assert.Equal(t, "1", obj.Pairs["a"].String())
	require.IsType(t, &value.Array{}, obj.Pairs["b"])
}

func TestToTimestampFormats(t *testing.T) {
	r := New()
	ts, _ := r.Lookup("to_timestamp")

	v, err := ts.Impl([]value.Value{&value.String{Value: "2026-08-23T10:00:00Z"}})
	require.NoError(t, err)
	assert.Equal(t, value.TimestampType, v.Type())

	_, err = ts.Impl([]value.Value{&value.String{Value: "not a time"}})
	assert.Error(t, err)
}
