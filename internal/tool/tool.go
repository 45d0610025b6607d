// Package tool provides the tool interfaces and the two lookup tools the
// release copilot agents call.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool describes an invokable capability.
type Tool interface {
	// Declaration returns the metadata describing the tool.
	Declaration() *Declaration
}

// CallableTool is a Tool that can be executed with JSON-encoded arguments.
type CallableTool interface {
	Tool

	// Call executes the tool. jsonArgs is the raw argument object as
	// produced by the model. Returns the result value or an error.
	Call(ctx context.Context, jsonArgs []byte) (any, error)
}

// Declaration describes a tool: its name, description and expected input.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	InputSchema *Schema `json:"inputSchema"`
}

// Schema is the JSON-schema subset used for tool inputs.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// FunctionTool adapts a plain function into a CallableTool.
type FunctionTool struct {
	decl *Declaration
	fn   func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool wraps fn with the given declaration.
func NewFunctionTool(decl *Declaration, fn func(ctx context.Context, args map[string]any) (any, error)) *FunctionTool {
	return &FunctionTool{decl: decl, fn: fn}
}

// Declaration implements Tool.
func (t *FunctionTool) Declaration() *Declaration { return t.decl }

// Call implements CallableTool. Empty argument payloads decode to an empty
// map so tools only deal with missing keys, not missing objects.
func (t *FunctionTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	args := map[string]any{}
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &args); err != nil {
			return nil, fmt.Errorf("tool %s: decode arguments: %w", t.decl.Name, err)
		}
	}
	return t.fn(ctx, args)
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}
