package tool

import (
	"context"
	"fmt"

	"github.com/releasecopilot/rcagent/internal/data"
)

// JobLogsResult is the tool output for get_job_logs.
type JobLogsResult struct {
	Found   bool     `json:"found"`
	JobID   string   `json:"job_id,omitempty"`
	Logs    []string `json:"logs,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewJobLogsTool builds the get_job_logs tool over the store.
func NewJobLogsTool(store *data.JobLogStore) *FunctionTool {
	decl := &Declaration{
		Name:        JobLogsToolName,
		Description: "Get the logs from a specific job to understand what happened during execution",
		InputSchema: &Schema{
			Type:     "object",
			Required: []string{"job_id"},
			Properties: map[string]*Schema{
				"job_id": {
					Type:        "string",
					Description: "The job ID to retrieve logs for (e.g., 'job-789')",
				},
			},
		},
	}
	return NewFunctionTool(decl, func(ctx context.Context, args map[string]any) (any, error) {
		jobID, err := stringArg(args, "job_id")
		if err != nil {
			return nil, err
		}

		lines, found, err := store.Logs(jobID)
		if err != nil {
			return JobLogsResult{Found: false, Error: err.Error()}, nil
		}
		if !found {
			return JobLogsResult{
				Found:   false,
				Message: fmt.Sprintf("No logs found for job '%s'", jobID),
			}, nil
		}
		return JobLogsResult{Found: true, JobID: jobID, Logs: lines}, nil
	})
}
