package registry

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/eventflow/remap/internal/typesystem"
	"github.com/eventflow/remap/internal/value"
)

// codecFunctions covers structured-data parsing/encoding and id generation.
func codecFunctions() []*Function {
	str := typesystem.NewString()

	return []*Function{
		{
			Name: "parse_json",
			Params: []Parameter{
				{Name: "value", Kinds: str, Required: true},
			},
			Return:         returns(typesystem.Any()),
			AlwaysFallible: true,
			Impl: func(args []value.Value) (value.Value, error) {
				s, ok := args[0].(*value.String)
				if !ok {
					return nil, fmt.Errorf("parse_json: expected string, found %s", args[0].Type())
				}
				var data interface{}
				if err := json.Unmarshal([]byte(s.Value), &data); err != nil {
					return nil, fmt.Errorf("parse_json: %v", err)
				}
				return value.FromInterface(data)
			},
		},
		{
			Name: "encode_json",
			Params: []Parameter{
				{Name: "value", Kinds: typesystem.Any(), Required: true},
			},
			Return: returns(str),
			Impl: func(args []value.Value) (value.Value, error) {
				data, err := json.Marshal(value.ToInterface(args[0]))
				if err != nil {
					return nil, fmt.Errorf("encode_json: %v", err)
				}
				return &value.String{Value: string(data)}, nil
			},
		},
		{
			Name: "parse_yaml",
			Params: []Parameter{
				{Name: "value", Kinds: str, Required: true},
			},
			Return:         returns(typesystem.Any()),
			AlwaysFallible: true,
			Impl: func(args []value.Value) (value.Value, error) {
				s, ok := args[0].(*value.String)
				if !ok {
					return nil, fmt.Errorf("parse_yaml: expected string, found %s", args[0].Type())
				}
				var data interface{}
				if err := yaml.Unmarshal([]byte(s.Value), &data); err != nil {
					return nil, fmt.Errorf("parse_yaml: %v", err)
				}
				return value.FromInterface(data)
			},
		},
		{
			Name: "encode_yaml",
			Params: []Parameter{
				{Name: "value", Kinds: typesystem.Any(), Required: true},
			},
			Return: returns(str),
			Impl: func(args []value.Value) (value.Value, error) {
				data, err := yaml.Marshal(value.ToInterface(args[0]))
				if err != nil {
					return nil, fmt.Errorf("encode_yaml: %v", err)
				}
				return &value.String{Value: string(data)}, nil
			},
		},
		{
			Name:   "uuid_v4",
			Return: returns(str),
			Impl: func([]value.Value) (value.Value, error) {
				return &value.String{Value: uuid.NewString()}, nil
			},
		},
	}
}
