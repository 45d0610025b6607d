package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/releasecopilot/rcagent/internal/agent"
	"github.com/releasecopilot/rcagent/internal/log"
	"github.com/releasecopilot/rcagent/internal/telemetry"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with the release copilot",
	Long: `Start an interactive terminal conversation with the multi-agent
release copilot. A coordinator routes each question to the pipeline status
specialist or the job logs analyzer.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
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
	coordinator := agent.NewCoordinator(completer, settings.Model, settings.DataDir)

	fmt.Println("Release Copilot - CI/CD Multi-Agent Assistant")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("This system uses multiple specialized agents:")
	fmt.Println("  - Coordinator: Routes your queries to the right specialist")
	fmt.Println("  - Pipeline Status Agent: Provides deployment status info")
	fmt.Println("  - Job Logs Analyzer: Analyzes failures and errors")
	fmt.Println("\nType 'exit' or 'quit' to end the conversation.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}

		resp, err := coordinator.Run(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		fmt.Printf("\nAgent: %s\n\n", resp.Text)
	}
	return scanner.Err()
}
