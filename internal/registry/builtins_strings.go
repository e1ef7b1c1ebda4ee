package registry

import (
	"fmt"
	"strings"

	"github.com/eventflow/remap/internal/typesystem"
	"github.com/eventflow/remap/internal/value"
)

func stringFunctions() []*Function {
	str := typesystem.NewString()

	return []*Function{
		{
			Name: "split",
			Params: []Parameter{
				{Name: "value", Kinds: str, Required: true},
				{Name: "pattern", Kinds: str.Union(typesystem.NewRegex()), Required: true},
				{Name: "limit", Kinds: typesystem.NewInteger()},
			},
			Return: returns(typesystem.NewOpenArray(typesystem.NewString())),
			Impl: func(args []value.Value) (value.Value, error) {
				s, ok := args[0].(*value.String)
				if !ok {
					return nil, fmt.Errorf("split: expected string, found %s", args[0].Type())
				}
				limit := -1
				if n, ok := args[2].(*value.Integer); ok {
					limit = int(n.Value)
				}
				var parts []string
				switch pat := args[1].(type) {
				case *value.String:
					parts = strings.SplitN(s.Value, pat.Value, limit)
				case *value.Regex:
					parts = pat.Value.Split(s.Value, limit)
				default:
					return nil, fmt.Errorf("split: expected string or regex pattern, found %s", args[1].Type())
				}
				out := &value.Array{Elements: make([]value.Value, len(parts))}
				for i, p := range parts {
					out.Elements[i] = &value.String{Value: p}
				}
				return out, nil
			},
		},
		{
			Name: "join",
			Params: []Parameter{
				{Name: "value", Kinds: typesystem.NewOpenArray(nil), Required: true},
				{Name: "separator", Kinds: str},
			},
			Return: returns(typesystem.NewString()),
			// The member types of an arbitrary array are not statically
			// known, so join can always meet a non-string element.
			AlwaysFallible: true,
			Impl: func(args []value.Value) (value.Value, error) {
				arr, ok := args[0].(*value.Array)
				if !ok {
					return nil, fmt.Errorf("join: expected array, found %s", args[0].Type())
				}
				sep := ""
				if s, ok := args[1].(*value.String); ok {
					sep = s.Value
				}
				parts := make([]string, len(arr.Elements))
				for i, e := range arr.Elements {
					s, ok := e.(*value.String)
					if !ok {
						return nil, fmt.Errorf("join: element %d is %s, not string", i, e.Type())
					}
					parts[i] = s.Value
				}
				return &value.String{Value: strings.Join(parts, sep)}, nil
			},
		},
		stringUnary("downcase", strings.ToLower),
		stringUnary("upcase", strings.ToUpper),
		{
			Name: "contains",
			Params: []Parameter{
				{Name: "value", Kinds: str, Required: true},
				{Name: "substring", Kinds: str, Required: true},
			},
			Return: returns(typesystem.NewBoolean()),
			Impl: func(args []value.Value) (value.Value, error) {
				s, ok := args[0].(*value.String)
				sub, ok2 := args[1].(*value.String)
				if !ok || !ok2 {
					return nil, fmt.Errorf("contains: expected string arguments")
				}
				return &value.Boolean{Value: strings.Contains(s.Value, sub.Value)}, nil
			},
		},
		{
			Name: "length",
			Params: []Parameter{{
				Name:     "value",
				Kinds:    str.Union(typesystem.NewBytes()).Union(typesystem.NewOpenObject(nil, nil)).Union(typesystem.NewOpenArray(nil)),
				Required: true,
			}},
			Return: returns(typesystem.NewInteger()),
			Impl: func(args []value.Value) (value.Value, error) {
				switch tv := args[0].(type) {
				case *value.String:
					return &value.Integer{Value: int64(len(tv.Value))}, nil
				case *value.Bytes:
					return &value.Integer{Value: int64(len(tv.Value))}, nil
				case *value.Object:
					return &value.Integer{Value: int64(len(tv.Pairs))}, nil
				case *value.Array:
					return &value.Integer{Value: int64(len(tv.Elements))}, nil
				default:
					return nil, fmt.Errorf("length: expected string, object or array, found %s", args[0].Type())
				}
			},
		},
	}
}

func stringUnary(name string, apply func(string) string) *Function {
	return &Function{
		Name: name,
		Params: []Parameter{
			{Name: "value", Kinds: typesystem.NewString(), Required: true},
		},
		Return: returns(typesystem.NewString()),
		Impl: func(args []value.Value) (value.Value, error) {
			s, ok := args[0].(*value.String)
			if !ok {
				return nil, fmt.Errorf("%s: expected string, found %s", name, args[0].Type())
			}
			return &value.String{Value: apply(s.Value)}, nil
		},
	}
}
