// Package mcpserver exposes the lookup tools over the Model Context
// Protocol, one server per tool as in the original deployment: a
// pipeline-status server and a job-logs server, each serving SSE or stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/releasecopilot/rcagent/internal/data"
	"github.com/releasecopilot/rcagent/internal/log"
	"github.com/releasecopilot/rcagent/internal/tool"
)

const serverVersion = "1.0.0"

// Server wraps an MCP server hosting one or more of the lookup tools.
type Server struct {
	name string
	mcp  *server.MCPServer
}

// NewPipelineServer builds the pipeline-status-server.
func NewPipelineServer(store *data.PipelineStore) *Server {
	s := newServer("pipeline-status-server")
	s.register(tool.NewPipelineStatusTool(store))
	return s
}

// NewJobLogsServer builds the job-logs-server.
func NewJobLogsServer(store *data.JobLogStore) *Server {
	s := newServer("job-logs-server")
	s.register(tool.NewJobLogsTool(store))
	return s
}

func newServer(name string) *Server {
	return &Server{
		name: name,
		mcp: server.NewMCPServer(
			name,
			serverVersion,
			server.WithToolCapabilities(true),
		),
	}
}

// register adds a callable tool to the MCP server, reusing its declaration
// as the raw input schema.
func (s *Server) register(t tool.CallableTool) {
	decl := t.Declaration()
	schema, err := json.Marshal(decl.InputSchema)
	if err != nil {
		// Schemas are static literals; this only fires on a programming error.
		log.Fatalf("mcp server %s: marshal schema for %s: %v", s.name, decl.Name, err)
	}
	s.mcp.AddTool(
		mcp.NewToolWithRawSchema(decl.Name, decl.Description, schema),
		s.handler(t),
	)
}

func (s *Server) handler(t tool.CallableTool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode arguments: %v", err)), nil
		}
		result, err := t.Call(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

// ServeSSE serves the MCP server over SSE on addr, blocking until the
// context is canceled or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sse := server.NewSSEServer(s.mcp,
		server.WithBaseURL(fmt.Sprintf("http://localhost%s", addr)),
	)
	log.Infof("%s: serving MCP over SSE on %s", s.name, addr)

	errCh := make(chan error, 1)
	go func() { errCh <- sse.Start(addr) }()

	select {
	case <-ctx.Done():
		return sse.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// ServeStdio serves the MCP server over stdio, the transport MCP-aware
// editors spawn directly.
func (s *Server) ServeStdio() error {
	log.Infof("%s: serving MCP over stdio", s.name)
	return server.ServeStdio(s.mcp)
}
