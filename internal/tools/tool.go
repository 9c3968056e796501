// Package tools adapts typed Go functions into model-callable tools. Each
// tool declares a JSON Schema reflected from its argument struct and
// validates model-supplied arguments against it before invoking.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/raseed-labs/raseed-backend/internal/llm"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

// UserIDArg is the argument key models sometimes echo back from the prompt.
// It is always discarded; the caller's user id is injected instead.
const UserIDArg = "user_id"

type Tool interface {
	Name() string
	Declaration() llm.FunctionDeclaration
	Invoke(ctx context.Context, userID string, args json.RawMessage) (any, error)
}

// Defaulter is implemented by argument structs with non-zero defaults. It is
// applied before the model's arguments are decoded over the struct.
type Defaulter interface {
	SetDefaults()
}

// ArgumentError reports arguments that do not match the tool's schema.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

type funcTool[A, R any] struct {
	decl   llm.FunctionDeclaration
	schema *validator.Schema
	fn     func(ctx context.Context, userID string, args A) (R, error)
}

// New builds a tool whose parameter schema is reflected from A.
func New[A, R any](name, description string, fn func(ctx context.Context, userID string, args A) (R, error)) (Tool, error) {
	raw, err := parameterSchema[A]()
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	schema, err := compileSchema(name, raw)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	return &funcTool[A, R]{
		decl: llm.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters:  raw,
		},
		schema: schema,
		fn:     fn,
	}, nil
}

func (t *funcTool[A, R]) Name() string {
	return t.decl.Name
}

func (t *funcTool[A, R]) Declaration() llm.FunctionDeclaration {
	return t.decl
}

func (t *funcTool[A, R]) Invoke(ctx context.Context, userID string, raw json.RawMessage) (any, error) {
	doc, err := ArgumentMap(raw)
	if err != nil {
		return nil, &ArgumentError{Tool: t.decl.Name, Err: err}
	}
	if err := t.schema.Validate(doc); err != nil {
		return nil, &ArgumentError{Tool: t.decl.Name, Err: err}
	}

	cleaned, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode arguments: %w", err)
	}
	var args A
	if d, ok := any(&args).(Defaulter); ok {
		d.SetDefaults()
	}
	if err := json.Unmarshal(cleaned, &args); err != nil {
		return nil, &ArgumentError{Tool: t.decl.Name, Err: err}
	}
	return t.fn(ctx, userID, args)
}

// ArgumentMap decodes raw function-call arguments into a map without the
// user id key. Missing arguments decode to an empty map.
func ArgumentMap(raw json.RawMessage) (map[string]any, error) {
	doc := map[string]any{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	}
	delete(doc, UserIDArg)
	return doc, nil
}
