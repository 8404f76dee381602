package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"mdit/internal/chat"
)

// Registry is the closed set of tools for one batch. It is built once per
// batch and never mutated afterwards.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(ts ...Tool) *Registry {
	m := make(map[string]Tool, len(ts))
	order := make([]string, 0, len(ts))
	for _, t := range ts {
		if _, seen := m[t.Name()]; !seen {
			order = append(order, t.Name())
		}
		m[t.Name()] = t
	}
	return &Registry{tools: m, order: order}
}

// Definitions returns the tool definitions in registration order, which is
// the order the prompt lists them in.
func (r *Registry) Definitions() []chat.ToolDef {
	out := make([]chat.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Definition())
	}
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return t.Execute(ctx, args)
}
