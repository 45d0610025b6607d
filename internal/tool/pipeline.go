package tool

import (
	"context"
	"fmt"

	"github.com/releasecopilot/rcagent/internal/data"
)

// Canonical tool names. The evaluation ground truth refers to these.
const (
	PipelineStatusToolName = "get_pipeline_status"
	JobLogsToolName        = "get_job_logs"
)

// PipelineStatusResult is the tool output for get_pipeline_status.
type PipelineStatusResult struct {
	Found       bool   `json:"found"`
	Status      string `json:"status,omitempty"`
	PipelineID  string `json:"pipeline_id,omitempty"`
	Branch      string `json:"branch,omitempty"`
	StartedAt   string `json:"started_at,omitempty"`
	FinishedAt  string `json:"finished_at,omitempty"`
	FailedJobID string `json:"failed_job_id,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewPipelineStatusTool builds the get_pipeline_status tool over the store.
// Data errors are reported inside the result (found=false) rather than as
// call failures, so the agent can relay them to the user.
func NewPipelineStatusTool(store *data.PipelineStore) *FunctionTool {
	decl := &Declaration{
		Name:        PipelineStatusToolName,
		Description: "Get the status of a deployment pipeline for a specific service and environment",
		InputSchema: &Schema{
			Type:     "object",
			Required: []string{"service", "environment"},
			Properties: map[string]*Schema{
				"service": {
					Type:        "string",
					Description: "The service name (e.g., 'payments', 'checkout')",
				},
				"environment": {
					Type:        "string",
					Description: "The environment (e.g., 'prod', 'staging')",
				},
			},
		},
	}
	return NewFunctionTool(decl, func(ctx context.Context, args map[string]any) (any, error) {
		service, err := stringArg(args, "service")
		if err != nil {
			return nil, err
		}
		environment, err := stringArg(args, "environment")
		if err != nil {
			return nil, err
		}

		p, found, err := store.Status(service, environment)
		if err != nil {
			return PipelineStatusResult{Found: false, Error: err.Error()}, nil
		}
		if !found {
			return PipelineStatusResult{
				Found: false,
				Message: fmt.Sprintf("No pipeline found for service '%s' in environment '%s'",
					service, environment),
			}, nil
		}
		return PipelineStatusResult{
			Found:       true,
			Status:      p.Status,
			PipelineID:  p.PipelineID,
			Branch:      p.Branch,
			StartedAt:   p.StartedAt,
			FinishedAt:  p.FinishedAt,
			FailedJobID: p.FailedJobID,
		}, nil
	})
}
