// Package agent wires tool-calling chat agents to an OpenAI-compatible
// backend. It contains the single-agent orchestrator used by the chat CLI,
// API server and eval collector, and the multi-agent coordinator variant.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/releasecopilot/rcagent/internal/log"
	"github.com/releasecopilot/rcagent/internal/tool"
)

const defaultMaxIterations = 8

// ChatCompleter is the one chat-completion call an agent needs from the
// backend. Tests substitute a scripted implementation.
type ChatCompleter interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAICompleter adapts an openai.Client to ChatCompleter.
type OpenAICompleter struct {
	client openai.Client
}

// NewOpenAICompleter builds a completer for the backend at baseURL (empty
// means the public OpenAI API).
func NewOpenAICompleter(apiKey, baseURL string) *OpenAICompleter {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompleter{client: openai.NewClient(opts...)}
}

// Complete implements ChatCompleter.
func (c *OpenAICompleter) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// ToolCallRecord is one tool invocation captured during a run, in call
// order. The collector hands these to the evaluator.
type ToolCallRecord struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Response is the outcome of a single agent run.
type Response struct {
	// Text is the agent's final assistant message.
	Text string

	// ToolCalls lists every tool call the agent made, in order.
	ToolCalls []ToolCallRecord
}

// ChatAgent runs the standard tool-call loop against a chat model: request a
// completion, execute any requested tools, feed the results back, repeat
// until the model answers in plain text.
type ChatAgent struct {
	name          string
	instructions  string
	model         string
	completer     ChatCompleter
	tools         []tool.CallableTool
	maxIterations int
	logger        log.Logger
}

// Option configures a ChatAgent.
type Option func(*ChatAgent)

// WithTools sets the agent's tool set.
func WithTools(tools ...tool.CallableTool) Option {
	return func(a *ChatAgent) { a.tools = tools }
}

// WithMaxIterations bounds the tool-call loop.
func WithMaxIterations(n int) Option {
	return func(a *ChatAgent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithLogger overrides the agent's logger.
func WithLogger(l log.Logger) Option {
	return func(a *ChatAgent) { a.logger = l }
}

// NewChatAgent builds an agent with the given identity and backend.
func NewChatAgent(name, instructions string, completer ChatCompleter, model string, opts ...Option) *ChatAgent {
	a := &ChatAgent{
		name:          name,
		instructions:  instructions,
		model:         model,
		completer:     completer,
		maxIterations: defaultMaxIterations,
		logger:        log.Default,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent's name.
func (a *ChatAgent) Name() string { return a.name }

// Run processes one user query and returns the final response together with
// every tool call made along the way.
func (a *ChatAgent) Run(ctx context.Context, query string) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(a.instructions),
			openai.UserMessage(query),
		},
		Tools: a.toolParams(),
	}

	var recorded []ToolCallRecord
	for i := 0; i < a.maxIterations; i++ {
		completion, err := a.completer.Complete(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("agent %s: completion: %w", a.name, err)
		}
		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("agent %s: completion returned no choices", a.name)
		}

		msg := completion.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return &Response{Text: msg.Content, ToolCalls: recorded}, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			recorded = append(recorded, recordCall(call))
			output := a.executeCall(ctx, call)
			params.Messages = append(params.Messages, openai.ToolMessage(output, call.ID))
		}
	}
	return nil, fmt.Errorf("agent %s: tool loop did not settle within %d iterations", a.name, a.maxIterations)
}

func recordCall(call openai.ChatCompletionMessageToolCall) ToolCallRecord {
	args := map[string]any{}
	if call.Function.Arguments != "" {
		// A malformed argument payload still gets recorded by name; the
		// tool itself will report the decode failure.
		_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
	}
	return ToolCallRecord{ID: call.ID, Name: call.Function.Name, Arguments: args}
}

// executeCall runs one requested tool and renders its output for the model.
// Tool failures are relayed as an error payload instead of aborting the run,
// so the model can recover or explain.
func (a *ChatAgent) executeCall(ctx context.Context, call openai.ChatCompletionMessageToolCall) string {
	name := call.Function.Name
	t := a.findTool(name)
	if t == nil {
		a.logger.Warnf("agent %s: model requested unknown tool %q", a.name, name)
		return fmt.Sprintf(`{"error": "unknown tool %q"}`, name)
	}

	a.logger.Debugf("agent %s: calling tool %s with %s", a.name, name, call.Function.Arguments)
	result, err := t.Call(ctx, []byte(call.Function.Arguments))
	if err != nil {
		a.logger.Warnf("agent %s: tool %s failed: %v", a.name, name, err)
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(payload)
	}

	switch v := result.(type) {
	case string:
		return v
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf(`{"error": "unencodable tool result: %v"}`, err)
		}
		return string(payload)
	}
}

func (a *ChatAgent) findTool(name string) tool.CallableTool {
	for _, t := range a.tools {
		if t.Declaration().Name == name {
			return t
		}
	}
	return nil
}

// toolParams converts the agent's tool declarations into the OpenAI tool
// parameter format.
func (a *ChatAgent) toolParams() []openai.ChatCompletionToolParam {
	var result []openai.ChatCompletionToolParam
	for _, t := range a.tools {
		decl := t.Declaration()
		schemaBytes, err := json.Marshal(decl.InputSchema)
		if err != nil {
			a.logger.Errorf("agent %s: marshal schema for tool %s: %v", a.name, decl.Name, err)
			continue
		}
		var parameters shared.FunctionParameters
		if err := json.Unmarshal(schemaBytes, &parameters); err != nil {
			a.logger.Errorf("agent %s: unmarshal schema for tool %s: %v", a.name, decl.Name, err)
			continue
		}
		result = append(result, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        decl.Name,
				Description: openai.String(decl.Description),
				Parameters:  parameters,
			},
		})
	}
	return result
}
