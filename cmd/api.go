package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/releasecopilot/rcagent/internal/agent"
	"github.com/releasecopilot/rcagent/internal/apiserver"
	"github.com/releasecopilot/rcagent/internal/log"
	"github.com/releasecopilot/rcagent/internal/telemetry"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the release copilot REST API",
	Long: `Serve the REST API: GET /health, POST /chat, GET /examples. The chat
endpoint runs the single-agent orchestrator with both lookup tools.`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Start(ctx,
		telemetry.WithEndpoint(settings.TraceEndpoint),
		telemetry.WithProtocol(settings.TraceProtocol),
	)
	if err != nil {
		return fmt.Errorf("start tracing: %w", err)
	}
	defer func() {
		if err := shutdown(); err != nil {
			log.Warnf("shutdown tracing: %v", err)
		}
	}()

	completer := agent.NewOpenAICompleter(settings.APIKey, settings.BaseURL)
	orchestrator := agent.NewOrchestrator(completer, settings.Model, settings.DataDir)
	srv := &http.Server{
		Addr:    settings.APIAddr,
		Handler: apiserver.New(orchestrator).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Release Copilot API listening on %s", settings.APIAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
