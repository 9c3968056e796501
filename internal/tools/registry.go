package tools

import (
	"fmt"

	"github.com/raseed-labs/raseed-backend/internal/llm"
)

// Registry maps tool names to tools. It is immutable after construction.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Name()
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Declarations returns the tool declarations in registration order.
func (r *Registry) Declarations() []llm.FunctionDeclaration {
	decls := make([]llm.FunctionDeclaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].Declaration())
	}
	return decls
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
