package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasecopilot/rcagent/internal/data"
	"github.com/releasecopilot/rcagent/internal/tool"
)

func testDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pipelines := `[
		{
			"service": "payments",
			"environment": "prod",
			"status": "success",
			"pipeline_id": "pipe-1001",
			"branch": "main",
			"started_at": "2025-01-15T09:12:00Z",
			"finished_at": "2025-01-15T09:27:41Z"
		}
	]`
	logs := `{"job-456": ["2025-01-15T08:51:44Z [ERROR] migration failed"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipelines.json"), []byte(pipelines), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.json"), []byte(logs), 0o644))
	return dir
}

func callToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestPipelineServerHandler(t *testing.T) {
	store := data.NewPipelineStore(testDataDir(t))
	srv := NewPipelineServer(store)

	handler := srv.handler(tool.NewPipelineStatusTool(store))
	result, err := handler(context.Background(), callToolRequest(tool.PipelineStatusToolName, map[string]any{
		"service":     "payments",
		"environment": "prod",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var status tool.PipelineStatusResult
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &status))
	assert.True(t, status.Found)
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, "pipe-1001", status.PipelineID)
}

func TestPipelineServerHandlerMissingArgument(t *testing.T) {
	store := data.NewPipelineStore(testDataDir(t))
	srv := NewPipelineServer(store)

	handler := srv.handler(tool.NewPipelineStatusTool(store))
	result, err := handler(context.Background(), callToolRequest(tool.PipelineStatusToolName, map[string]any{
		"service": "payments",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestJobLogsServerHandler(t *testing.T) {
	store := data.NewJobLogStore(testDataDir(t))
	srv := NewJobLogsServer(store)

	handler := srv.handler(tool.NewJobLogsTool(store))
	result, err := handler(context.Background(), callToolRequest(tool.JobLogsToolName, map[string]any{
		"job_id": "job-456",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var logs tool.JobLogsResult
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &logs))
	assert.True(t, logs.Found)
	require.Len(t, logs.Logs, 1)
}

func TestJobLogsServerHandlerNotFound(t *testing.T) {
	store := data.NewJobLogStore(testDataDir(t))
	srv := NewJobLogsServer(store)

	handler := srv.handler(tool.NewJobLogsTool(store))
	result, err := handler(context.Background(), callToolRequest(tool.JobLogsToolName, map[string]any{
		"job_id": "job-999",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var logs tool.JobLogsResult
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &logs))
	assert.False(t, logs.Found)
	assert.Contains(t, logs.Message, "job-999")
}
