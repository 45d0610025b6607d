package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/releasecopilot/rcagent/internal/tool"
)

// AgentTool exposes a ChatAgent as a callable tool, so a coordinator agent
// can consult a specialist the same way it calls any other tool. Tool calls
// the specialist makes internally are surfaced on the wrapper for the
// collector to pick up.
type AgentTool struct {
	decl  *tool.Declaration
	agent *ChatAgent

	calls []ToolCallRecord
}

// NewAgentTool wraps sub as a tool taking a single "query" argument.
func NewAgentTool(name, description string, sub *ChatAgent) *AgentTool {
	return &AgentTool{
		decl: &tool.Declaration{
			Name:        name,
			Description: description,
			InputSchema: &tool.Schema{
				Type:     "object",
				Required: []string{"query"},
				Properties: map[string]*tool.Schema{
					"query": {
						Type:        "string",
						Description: "The user's question, passed to the specialist verbatim",
					},
				},
			},
		},
		agent: sub,
	}
}

// Declaration implements tool.Tool.
func (t *AgentTool) Declaration() *tool.Declaration { return t.decl }

// Call implements tool.CallableTool by running the wrapped specialist.
func (t *AgentTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	args := map[string]any{}
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &args); err != nil {
			return nil, fmt.Errorf("tool %s: decode arguments: %w", t.decl.Name, err)
		}
	}
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("tool %s: missing required argument \"query\"", t.decl.Name)
	}

	resp, err := t.agent.Run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("specialist %s: %w", t.agent.Name(), err)
	}
	t.calls = append(t.calls, resp.ToolCalls...)
	if resp.Text == "" {
		return fmt.Sprintf("No response from %s", t.agent.Name()), nil
	}
	return resp.Text, nil
}

// SubCalls returns the tool calls the wrapped specialist made across every
// consultation so far.
func (t *AgentTool) SubCalls() []ToolCallRecord { return t.calls }
