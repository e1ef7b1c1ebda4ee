// Package value is the tagged runtime representation of event data: every
// primitive kind the type lattice tracks plus nested object/array
// structures. Reads at a path report absence distinctly from null.
package value

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	NullType      Type = "null"
	BooleanType   Type = "boolean"
	IntegerType   Type = "integer"
	FloatType     Type = "float"
	StringType    Type = "string"
	TimestampType Type = "timestamp"
	RegexType     Type = "regex"
	BytesType     Type = "bytes"
	ObjectType    Type = "object"
	ArrayType     Type = "array"
)

// Value is the interface all runtime values implement.
type Value interface {
	Type() Type
	String() string
}

type Null struct{}

func (Null) Type() Type     { return NullType }
func (Null) String() string { return "null" }

type Boolean struct{ Value bool }

func (b *Boolean) Type() Type     { return BooleanType }
func (b *Boolean) String() string { return strconv.FormatBool(b.Value) }

type Integer struct{ Value int64 }

func (i *Integer) Type() Type     { return IntegerType }
func (i *Integer) String() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (f *Float) Type() Type     { return FloatType }
func (f *Float) String() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type String struct{ Value string }

func (s *String) Type() Type     { return StringType }
func (s *String) String() string { return strconv.Quote(s.Value) }

type Timestamp struct{ Value time.Time }

func (t *Timestamp) Type() Type     { return TimestampType }
func (t *Timestamp) String() string { return t.Value.UTC().Format(time.RFC3339Nano) }

type Regex struct{ Value *regexp.Regexp }

func (r *Regex) Type() Type     { return RegexType }
func (r *Regex) String() string { return "r'" + r.Value.String() + "'" }

type Bytes struct{ Value []byte }

func (b *Bytes) Type() Type     { return BytesType }
func (b *Bytes) String() string { return fmt.Sprintf("b%q", b.Value) }

type Object struct{ Pairs map[string]Value }

func (o *Object) Type() Type { return ObjectType }
func (o *Object) String() string {
	keys := make([]string, 0, len(o.Pairs))
	for k := range o.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, o.Pairs[k].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type Array struct{ Elements []Value }

func (a *Array) Type() Type { return ArrayType }
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func NewObject() *Object { return &Object{Pairs: map[string]Value{}} }
func NewArray() *Array   { return &Array{} }

// IsCollection reports whether the value is an object or array.
func IsCollection(v Value) bool {
	t := v.Type()
	return t == ObjectType || t == ArrayType
}

// Equal compares two values structurally. Integer and float compare by
// numeric value across the two types, matching the language's == operator.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Integer:
		switch bv := b.(type) {
		case *Integer:
			return av.Value == bv.Value
		case *Float:
			return float64(av.Value) == bv.Value
		}
		return false
	case *Float:
		switch bv := b.(type) {
		case *Float:
			return av.Value == bv.Value
		case *Integer:
			return av.Value == float64(bv.Value)
		}
		return false
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *Timestamp:
		bv, ok := b.(*Timestamp)
		return ok && av.Value.Equal(bv.Value)
	case *Regex:
		bv, ok := b.(*Regex)
		return ok && av.Value.String() == bv.Value.String()
	case *Bytes:
		bv, ok := b.(*Bytes)
		return ok && string(av.Value) == string(bv.Value)
	case *Object:
		bv, ok := b.(*Object)
		if !ok || len(av.Pairs) != len(bv.Pairs) {
			return false
		}
		for k, v := range av.Pairs {
			o, ok := bv.Pairs[k]
			if !ok || !Equal(v, o) {
				return false
			}
		}
		return true
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i, v := range av.Elements {
			if !Equal(v, bv.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Copy returns a deep copy; collections are duplicated, scalars reused
// (scalar values are never mutated in place).
func Copy(v Value) Value {
	switch tv := v.(type) {
	case *Object:
		out := NewObject()
		for k, child := range tv.Pairs {
			out.Pairs[k] = Copy(child)
		}
		return out
	case *Array:
		out := &Array{Elements: make([]Value, len(tv.Elements))}
		for i, child := range tv.Elements {
			out.Elements[i] = Copy(child)
		}
		return out
	default:
		return v
	}
}
