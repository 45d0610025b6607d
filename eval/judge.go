package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// JudgeScore is the LLM judge's rating of a single case.
type JudgeScore struct {
	Correctness  float64 `json:"correctness_score"`
	Completeness float64 `json:"completeness_score"`
	Efficiency   float64 `json:"efficiency_score"`
	Overall      float64 `json:"overall_score"`
	Reasoning    string  `json:"reasoning"`
}

// JudgeInput is everything the judge sees about a case.
type JudgeInput struct {
	Query           string
	Response        string
	ExpectedTools   []string
	ToolCalls       []ToolCall
	ToolDefinitions []ToolDefinition
}

// ToolDefinition is the judge-facing description of an available tool.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultToolDefinitions describes the release copilot's two tools.
func DefaultToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "get_pipeline_status",
			Description: "Get the status of a deployment pipeline for a specific service and environment",
		},
		{
			Name:        "get_job_logs",
			Description: "Get the logs from a specific job to understand what happened during execution",
		},
	}
}

// Judge rates tool-selection quality for one case. Implementations may fail
// (network, auth); callers must treat a failure as "judge unavailable" for
// that case and keep the manual metrics.
type Judge interface {
	Score(ctx context.Context, input JudgeInput) (*JudgeScore, error)
}

// Completer is the single chat-completion call the judge needs. The OpenAI
// client is adapted to it in production; tests substitute a script.
type Completer interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// LLMJudge scores cases with an OpenAI-compatible chat model.
type LLMJudge struct {
	completer Completer
	model     string
}

// NewLLMJudge builds a judge on the given completer and model name.
func NewLLMJudge(completer Completer, model string) *LLMJudge {
	return &LLMJudge{completer: completer, model: model}
}

// Score implements Judge. Temperature 0 and a JSON-object response format
// keep the rating deterministic and parseable.
func (j *LLMJudge) Score(ctx context.Context, input JudgeInput) (*JudgeScore, error) {
	prompt, err := buildJudgePrompt(input)
	if err != nil {
		return nil, err
	}

	completion, err := j.completer.Complete(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert AI evaluator. Respond only with valid JSON."),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("judge completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("judge completion returned no choices")
	}

	var score JudgeScore
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &score); err != nil {
		return nil, fmt.Errorf("parse judge response: %w", err)
	}
	return &score, nil
}

func buildJudgePrompt(input JudgeInput) (string, error) {
	defs := input.ToolDefinitions
	if defs == nil {
		defs = DefaultToolDefinitions()
	}
	defsJSON, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tool definitions: %w", err)
	}
	callsJSON, err := json.MarshalIndent(input.ToolCalls, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tool calls: %w", err)
	}

	return fmt.Sprintf(`You are an expert evaluator for AI agent tool selection.

Evaluate whether the agent selected the appropriate tools for the given user query.

User Query: %q

Available Tools:
%s

Expected Tools: %s

Actual Tool Calls:
%s

Agent Response:
%s

Evaluate the tool selection on the following criteria:
1. Correctness: Did the agent select the right tools for the query?
2. Completeness: Were all necessary tools selected?
3. Efficiency: Were any unnecessary tools selected?

Provide your evaluation in JSON format:
{
    "correctness_score": <float 0-1>,
    "completeness_score": <float 0-1>,
    "efficiency_score": <float 0-1>,
    "overall_score": <float 0-1>,
    "reasoning": "<brief explanation>"
}`,
		input.Query,
		defsJSON,
		strings.Join(input.ExpectedTools, ", "),
		callsJSON,
		input.Response,
	), nil
}
