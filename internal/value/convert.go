package value

import (
	"fmt"
	"time"

	"github.com/eventflow/remap/internal/typesystem"
)

// FromInterface converts decoded JSON/YAML data to a Value. yaml.v3 yields
// int for integers and map[string]interface{} for mappings; encoding/json
// yields float64 and the same map shape. Whole floats stay floats: the
// distinction is meaningful to the type lattice.
func FromInterface(data interface{}) (Value, error) {
	switch v := data.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return &Boolean{Value: v}, nil
	case int:
		return &Integer{Value: int64(v)}, nil
	case int64:
		return &Integer{Value: v}, nil
	case uint64:
		return &Integer{Value: int64(v)}, nil
	case float64:
		return &Float{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	case []byte:
		return &Bytes{Value: v}, nil
	case time.Time:
		return &Timestamp{Value: v}, nil
	case []interface{}:
		elements := make([]Value, len(v))
		for i, item := range v {
			elem, err := FromInterface(item)
			if err != nil {
				return nil, err
			}
			elements[i] = elem
		}
		return &Array{Elements: elements}, nil
	case map[string]interface{}:
		obj := NewObject()
		for key, item := range v {
			child, err := FromInterface(item)
			if err != nil {
				return nil, err
			}
			obj.Pairs[key] = child
		}
		return obj, nil
	case map[interface{}]interface{}:
		obj := NewObject()
		for key, item := range v {
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported object key type %T", key)
			}
			child, err := FromInterface(item)
			if err != nil {
				return nil, err
			}
			obj.Pairs[name] = child
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", data)
	}
}

// ToInterface converts a Value back to plain Go data for JSON/YAML encoding.
// Timestamps render as RFC 3339 strings, regexes as their source text.
func ToInterface(v Value) interface{} {
	switch tv := v.(type) {
	case Null:
		return nil
	case *Boolean:
		return tv.Value
	case *Integer:
		return tv.Value
	case *Float:
		return tv.Value
	case *String:
		return tv.Value
	case *Bytes:
		return string(tv.Value)
	case *Timestamp:
		return tv.Value.UTC().Format(time.RFC3339Nano)
	case *Regex:
		return tv.Value.String()
	case *Array:
		out := make([]interface{}, len(tv.Elements))
		for i, e := range tv.Elements {
			out[i] = ToInterface(e)
		}
		return out
	case *Object:
		out := make(map[string]interface{}, len(tv.Pairs))
		for k, child := range tv.Pairs {
			out[k] = ToInterface(child)
		}
		return out
	default:
		return nil
	}
}

// KindOf reports the exact lattice entry of a concrete value, used by the
// runtime for narrow checks and by type-assertion functions.
func KindOf(v Value) *typesystem.Kind {
	switch tv := v.(type) {
	case Null:
		return typesystem.NewNull()
	case *Boolean:
		return typesystem.NewBoolean()
	case *Integer:
		return typesystem.NewInteger()
	case *Float:
		return typesystem.NewFloat()
	case *String:
		return typesystem.NewString()
	case *Timestamp:
		return typesystem.NewTimestamp()
	case *Regex:
		return typesystem.NewRegex()
	case *Bytes:
		return typesystem.NewBytes()
	case *Object:
		fields := make(map[string]*typesystem.Kind, len(tv.Pairs))
		for k, child := range tv.Pairs {
			fields[k] = KindOf(child)
		}
		return typesystem.NewObject(fields)
	case *Array:
		elems := make([]*typesystem.Kind, len(tv.Elements))
		for i, e := range tv.Elements {
			elems[i] = KindOf(e)
		}
		return typesystem.NewArray(elems...)
	default:
		return typesystem.Any()
	}
}

// DefaultFor picks the discharge default for a lattice entry: the value the
// ok binding of a dual-capture assignment receives when the expression
// fails. Null when possible, otherwise the zero value of one of the entry's
// kinds.
func DefaultFor(k *typesystem.Kind) Value {
	switch {
	case k == nil || k.ContainsNull() || k.IsNever():
		return Null{}
	case k.ContainsString():
		return &String{Value: ""}
	case k.ContainsInteger():
		return &Integer{Value: 0}
	case k.ContainsFloat():
		return &Float{Value: 0}
	case k.ContainsBoolean():
		return &Boolean{Value: false}
	case k.ContainsBytes():
		return &Bytes{Value: nil}
	case k.ContainsTimestamp():
		return &Timestamp{Value: time.Unix(0, 0).UTC()}
	case k.ContainsObject():
		return NewObject()
	case k.ContainsArray():
		return NewArray()
	default:
		return Null{}
	}
}
