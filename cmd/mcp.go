package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/releasecopilot/rcagent/internal/data"
	"github.com/releasecopilot/rcagent/internal/mcpserver"
)

var mcpTransport string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run a lookup tool as an MCP server",
	Long: `Run one of the lookup tools as a standalone Model Context Protocol
server, either over SSE for networked clients or over stdio for editor
integrations.`,
}

var mcpPipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Serve the pipeline status tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		srv := mcpserver.NewPipelineServer(data.NewPipelineStore(settings.DataDir))
		return serveMCP(cmd, srv, settings.PipelineMCPAddr)
	},
}

var mcpJobLogsCmd = &cobra.Command{
	Use:   "joblogs",
	Short: "Serve the job logs tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		srv := mcpserver.NewJobLogsServer(data.NewJobLogStore(settings.DataDir))
		return serveMCP(cmd, srv, settings.JobLogsMCPAddr)
	},
}

func init() {
	mcpCmd.PersistentFlags().StringVar(&mcpTransport, "transport", "sse",
		"MCP transport: sse or stdio")
	mcpCmd.AddCommand(mcpPipelineCmd)
	mcpCmd.AddCommand(mcpJobLogsCmd)
	rootCmd.AddCommand(mcpCmd)
}

func serveMCP(cmd *cobra.Command, srv *mcpserver.Server, addr string) error {
	switch mcpTransport {
	case "stdio":
		return srv.ServeStdio()
	case "sse":
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ServeSSE(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (want sse or stdio)", mcpTransport)
	}
}
