package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasecopilot/rcagent/internal/data"
)

func testDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pipelines := `[
		{
			"service": "checkout",
			"environment": "staging",
			"status": "failed",
			"pipeline_id": "pipe-1003",
			"branch": "feature/cart-v2",
			"started_at": "2025-01-15T08:40:05Z",
			"finished_at": "2025-01-15T08:52:19Z",
			"failed_job_id": "job-456"
		}
	]`
	logs := `{
		"job-456": [
			"2025-01-15T08:51:44Z [ERROR] Migration 0042_add_cart_index failed"
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipelines.json"), []byte(pipelines), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.json"), []byte(logs), 0o644))
	return dir
}

func TestPipelineStatusTool(t *testing.T) {
	tl := NewPipelineStatusTool(data.NewPipelineStore(testDataDir(t)))

	decl := tl.Declaration()
	assert.Equal(t, PipelineStatusToolName, decl.Name)
	assert.ElementsMatch(t, []string{"service", "environment"}, decl.InputSchema.Required)

	result, err := tl.Call(context.Background(), []byte(`{"service": "checkout", "environment": "staging"}`))
	require.NoError(t, err)
	status, ok := result.(PipelineStatusResult)
	require.True(t, ok)
	assert.True(t, status.Found)
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, "job-456", status.FailedJobID)
}

func TestPipelineStatusToolNotFound(t *testing.T) {
	tl := NewPipelineStatusTool(data.NewPipelineStore(testDataDir(t)))

	result, err := tl.Call(context.Background(), []byte(`{"service": "payments", "environment": "prod"}`))
	require.NoError(t, err)
	status := result.(PipelineStatusResult)
	assert.False(t, status.Found)
	assert.Equal(t, "No pipeline found for service 'payments' in environment 'prod'", status.Message)
}

func TestPipelineStatusToolMissingArgument(t *testing.T) {
	tl := NewPipelineStatusTool(data.NewPipelineStore(testDataDir(t)))

	_, err := tl.Call(context.Background(), []byte(`{"service": "payments"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"environment"`)
}

func TestPipelineStatusToolStoreErrorInResult(t *testing.T) {
	// An empty data dir has no pipelines.json; the read failure surfaces in
	// the result payload, not as a call error.
	tl := NewPipelineStatusTool(data.NewPipelineStore(t.TempDir()))

	result, err := tl.Call(context.Background(), []byte(`{"service": "payments", "environment": "prod"}`))
	require.NoError(t, err)
	status := result.(PipelineStatusResult)
	assert.False(t, status.Found)
	assert.NotEmpty(t, status.Error)
}

func TestJobLogsTool(t *testing.T) {
	tl := NewJobLogsTool(data.NewJobLogStore(testDataDir(t)))

	decl := tl.Declaration()
	assert.Equal(t, JobLogsToolName, decl.Name)

	result, err := tl.Call(context.Background(), []byte(`{"job_id": "job-456"}`))
	require.NoError(t, err)
	logs, ok := result.(JobLogsResult)
	require.True(t, ok)
	assert.True(t, logs.Found)
	assert.Equal(t, "job-456", logs.JobID)
	require.Len(t, logs.Logs, 1)
}

func TestJobLogsToolNotFound(t *testing.T) {
	tl := NewJobLogsTool(data.NewJobLogStore(testDataDir(t)))

	result, err := tl.Call(context.Background(), []byte(`{"job_id": "job-999"}`))
	require.NoError(t, err)
	logs := result.(JobLogsResult)
	assert.False(t, logs.Found)
	assert.Equal(t, "No logs found for job 'job-999'", logs.Message)
}

func TestJobLogsToolWrongArgumentType(t *testing.T) {
	tl := NewJobLogsTool(data.NewJobLogStore(testDataDir(t)))

	_, err := tl.Call(context.Background(), []byte(`{"job_id": 456}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string")
}

func TestFunctionToolEmptyArguments(t *testing.T) {
	decl := &Declaration{Name: "echo_args", InputSchema: &Schema{Type: "object"}}
	tl := NewFunctionTool(decl, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	})

	result, err := tl.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, result)
}

func TestFunctionToolMalformedArguments(t *testing.T) {
	decl := &Declaration{Name: "echo_args", InputSchema: &Schema{Type: "object"}}
	tl := NewFunctionTool(decl, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	})

	_, err := tl.Call(context.Background(), []byte(`{broken`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode arguments")
}
