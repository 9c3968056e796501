package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/raseed-labs/raseed-backend/types"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

var categoryType = reflect.TypeOf(types.Category(""))

// reflector inlines every nested type so the declaration is a single
// self-contained object schema.
var reflector = &jsonschema.Reflector{
	Anonymous:                 true,
	AllowAdditionalProperties: true,
	DoNotReference:            true,
	ExpandedStruct:            true,
	Mapper:                    mapType,
}

func mapType(t reflect.Type) *jsonschema.Schema {
	if t == categoryType {
		enum := make([]any, 0, len(types.Categories))
		for _, c := range types.Categories {
			enum = append(enum, string(c))
		}
		return &jsonschema.Schema{Type: "string", Enum: enum}
	}
	return nil
}

// parameterSchema reflects the JSON Schema of the argument type A.
func parameterSchema[A any]() (json.RawMessage, error) {
	var zero A
	s := reflector.Reflect(&zero)
	s.Version = ""
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal parameter schema: %w", err)
	}
	return raw, nil
}

func compileSchema(name string, raw json.RawMessage) (*validator.Schema, error) {
	url := name + ".json"
	compiler := validator.NewCompiler()
	compiler.Draft = validator.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
