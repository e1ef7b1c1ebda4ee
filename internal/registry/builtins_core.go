package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eventflow/remap/internal/typesystem"
	"github.com/eventflow/remap/internal/value"
)

// coreFunctions covers conversions, runtime type assertions and time.
func coreFunctions() []*Function {
	numeric := typesystem.NewInteger().Union(typesystem.NewFloat())

	return []*Function{
		{
			Name: "to_string",
			Params: []Parameter{
				{Name: "value", Kinds: scalarNoRegexMask(), Required: true},
			},
			Return: returns(typesystem.NewString()),
			Impl: func(args []value.Value) (value.Value, error) {
				return toString(args[0])
			},
		},
		{
			Name: "to_int",
			Params: []Parameter{{
				Name:     "value",
				Kinds:    scalarNoRegexMask(),
				Safe:     numeric.Union(typesystem.NewBoolean()).Union(typesystem.NewNull()).Union(typesystem.NewTimestamp()),
				Required: true,
			}},
			Return: returns(typesystem.NewInteger()),
			Impl: func(args []value.Value) (value.Value, error) {
				return toInt(args[0])
			},
		},
		{
			Name: "to_float",
			Params: []Parameter{{
				Name:     "value",
				Kinds:    scalarNoRegexMask(),
				Safe:     numeric.Union(typesystem.NewBoolean()).Union(typesystem.NewNull()).Union(typesystem.NewTimestamp()),
				Required: true,
			}},
			Return: returns(typesystem.NewFloat()),
			Impl: func(args []value.Value) (value.Value, error) {
				return toFloat(args[0])
			},
		},
		{
			Name: "to_bool",
			Params: []Parameter{{
				Name:     "value",
				Kinds:    typesystem.NewBoolean().Union(numeric).Union(typesystem.NewString()).Union(typesystem.NewNull()),
				Safe:     typesystem.NewBoolean().Union(numeric).Union(typesystem.NewNull()),
				Required: true,
			}},
			Return: returns(typesystem.NewBoolean()),
			Impl: func(args []value.Value) (value.Value, error) {
				return toBool(args[0])
			},
		},

		assertion("string", typesystem.NewString()),
		assertion("int", typesystem.NewInteger()),
		assertion("float", typesystem.NewFloat()),
		assertion("bool", typesystem.NewBoolean()),
		assertion("timestamp", typesystem.NewTimestamp()),
		assertion("object", typesystem.NewOpenObject(nil, nil)),
		assertion("array", typesystem.NewOpenArray(nil)),

		{
			Name:   "now",
			Return: returns(typesystem.NewTimestamp()),
			Impl: func([]value.Value) (value.Value, error) {
				return &value.Timestamp{Value: time.Now().UTC()}, nil
			},
		},
		{
			Name: "to_timestamp",
			Params: []Parameter{{
				Name:     "value",
				Kinds:    typesystem.NewTimestamp().Union(typesystem.NewInteger()).Union(typesystem.NewString()),
				Safe:     typesystem.NewTimestamp().Union(typesystem.NewInteger()),
				Required: true,
			}},
			Return: returns(typesystem.NewTimestamp()),
			Impl: func(args []value.Value) (value.Value, error) {
				return toTimestamp(args[0])
			},
		},
		{
			Name: "assert",
			Params: []Parameter{
				{Name: "condition", Kinds: typesystem.NewBoolean(), Required: true},
				{Name: "message", Kinds: typesystem.NewString()},
			},
			Return:         returns(typesystem.NewBoolean()),
			AlwaysFallible: true,
			Impl: func(args []value.Value) (value.Value, error) {
				cond, ok := args[0].(*value.Boolean)
				if !ok || !cond.Value {
					if msg, ok := args[1].(*value.String); ok {
						return nil, fmt.Errorf("assertion failed: %s", msg.Value)
					}
					return nil, fmt.Errorf("assertion failed")
				}
				return cond, nil
			},
		},
	}
}

// assertion builds the runtime type-assertion function named after a kind:
// it narrows the static type to exactly that kind and fails at runtime on
// any other value.
func assertion(name string, target *typesystem.Kind) *Function {
	return &Function{
		Name: name,
		Params: []Parameter{
			{Name: "value", Kinds: typesystem.Any(), Safe: target, Required: true},
		},
		Return: func(args []*typesystem.Kind) *typesystem.Kind {
			if args[0] == nil {
				return target.Copy()
			}
			narrowed := args[0].Narrow(target)
			if narrowed.IsNever() {
				return target.Copy()
			}
			return narrowed
		},
		Impl: func(args []value.Value) (value.Value, error) {
			if !value.KindOf(args[0]).OnlyWithin(target) {
				return nil, fmt.Errorf("expected %s, found %s", target, args[0].Type())
			}
			return args[0], nil
		},
	}
}

func toString(v value.Value) (value.Value, error) {
	switch tv := v.(type) {
	case value.Null:
		return &value.String{Value: ""}, nil
	case *value.String:
		return tv, nil
	case *value.Bytes:
		return &value.String{Value: string(tv.Value)}, nil
	case *value.Boolean:
		return &value.String{Value: strconv.FormatBool(tv.Value)}, nil
	case *value.Integer:
		return &value.String{Value: strconv.FormatInt(tv.Value, 10)}, nil
	case *value.Float:
		return &value.String{Value: strconv.FormatFloat(tv.Value, 'g', -1, 64)}, nil
	case *value.Timestamp:
		return &value.String{Value: tv.Value.UTC().Format(time.RFC3339Nano)}, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to string", v.Type())
	}
}

func toInt(v value.Value) (value.Value, error) {
	switch tv := v.(type) {
	case value.Null:
		return &value.Integer{Value: 0}, nil
	case *value.Integer:
		return tv, nil
	case *value.Float:
		return &value.Integer{Value: int64(tv.Value)}, nil
	case *value.Boolean:
		if tv.Value {
			return &value.Integer{Value: 1}, nil
		}
		return &value.Integer{Value: 0}, nil
	case *value.Timestamp:
		return &value.Integer{Value: tv.Value.Unix()}, nil
	case *value.String:
		n, err := strconv.ParseInt(strings.TrimSpace(tv.Value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as integer", tv.Value)
		}
		return &value.Integer{Value: n}, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to integer", v.Type())
	}
}

func toFloat(v value.Value) (value.Value, error) {
	switch tv := v.(type) {
	case value.Null:
		return &value.Float{Value: 0}, nil
	case *value.Float:
		return tv, nil
	case *value.Integer:
		return &value.Float{Value: float64(tv.Value)}, nil
	case *value.Boolean:
		if tv.Value {
			return &value.Float{Value: 1}, nil
		}
		return &value.Float{Value: 0}, nil
	case *value.Timestamp:
		return &value.Float{Value: float64(tv.Value.UnixNano()) / float64(time.Second)}, nil
	case *value.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(tv.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as float", tv.Value)
		}
		return &value.Float{Value: f}, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to float", v.Type())
	}
}

func toBool(v value.Value) (value.Value, error) {
	switch tv := v.(type) {
	case value.Null:
		return &value.Boolean{Value: false}, nil
	case *value.Boolean:
		return tv, nil
	case *value.Integer:
		return &value.Boolean{Value: tv.Value != 0}, nil
	case *value.Float:
		return &value.Boolean{Value: tv.Value != 0}, nil
	case *value.String:
		switch strings.ToLower(strings.TrimSpace(tv.Value)) {
		case "true", "t", "yes", "y", "1":
			return &value.Boolean{Value: true}, nil
		case "false", "f", "no", "n", "0":
			return &value.Boolean{Value: false}, nil
		}
		return nil, fmt.Errorf("cannot parse %q as boolean", tv.Value)
	default:
		return nil, fmt.Errorf("cannot convert %s to boolean", v.Type())
	}
}

func toTimestamp(v value.Value) (value.Value, error) {
	switch tv := v.(type) {
	case *value.Timestamp:
		return tv, nil
	case *value.Integer:
		return &value.Timestamp{Value: time.Unix(tv.Value, 0).UTC()}, nil
	case *value.String:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, tv.Value); err == nil {
				return &value.Timestamp{Value: ts.UTC()}, nil
			}
		}
		return nil, fmt.Errorf("cannot parse %q as timestamp", tv.Value)
	default:
		return nil, fmt.Errorf("cannot convert %s to timestamp", v.Type())
	}
}
