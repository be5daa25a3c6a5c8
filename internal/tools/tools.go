// Package tools defines the closed set of operations the chat model may
// invoke mid-generation. Each tool validates its own arguments and answers
// with a short text block; argument and domain failures become failure text
// the model can recover from conversationally, never errors.
package tools

import (
	"context"
	"fmt"

	"github.com/nbruun/whisp/internal/llm"
)

// Tool is one capability exposed to the chat model.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Parameters returns the JSON Schema of the tool's arguments.
	Parameters() map[string]any

	// Call runs the tool and returns a short text block for the model.
	Call(ctx context.Context, args map[string]any) string
}

// Registry holds the enumerable tool set and dispatches calls by name.
type Registry struct {
	names []string
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registration order is preserved for declarations.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.names = append(r.names, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the registered tools in registration order.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.tools[name])
	}
	return out
}

// Declarations returns model-ready function declarations for all tools.
func (r *Registry) Declarations() []llm.FunctionDeclaration {
	decls := make([]llm.FunctionDeclaration, 0, len(r.names))
	for _, t := range r.All() {
		decls = append(decls, llm.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return decls
}

// Dispatch routes a model-issued function call to the named tool. Unknown
// tool names come back as failure text like every other tool-level failure.
func (r *Registry) Dispatch(ctx context.Context, call llm.FunctionCall) string {
	t, ok := r.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", call.Name)
	}
	return t.Call(ctx, call.Args)
}

// Argument helpers shared by the tool implementations.

func stringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func optionalStringArg(args map[string]any, name string) string {
	s, _ := stringArg(args, name)
	return s
}

func stringSliceArg(args map[string]any, name string) []string {
	v, ok := args[name]
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func missingArg(name string) string {
	return fmt.Sprintf("Missing required argument: %s", name)
}
