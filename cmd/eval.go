package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/releasecopilot/rcagent/eval"
	"github.com/releasecopilot/rcagent/internal/agent"
	"github.com/releasecopilot/rcagent/internal/collect"
	"github.com/releasecopilot/rcagent/internal/log"
)

var (
	groundTruthPath  string
	collectedPath    string
	evalOutputPath   string
	useJudge         bool
	judgeConcurrency int
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Tool-selection evaluation harness",
	Long: `Evaluate the agent's tool selection. "eval collect" runs the agent over
the ground-truth queries and records its responses and tool calls;
"eval run" scores a collected file with set-based precision, recall, F1
and exact match, plus an optional LLM judge.`,
}

var evalCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the agent over the ground-truth queries and record responses",
	RunE:  runEvalCollect,
}

var evalRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Score a collected-responses file",
	RunE:  runEvalRun,
}

func init() {
	evalCollectCmd.Flags().StringVar(&groundTruthPath, "ground-truth", "",
		"ground-truth JSON file (default <data-dir>/ground_truth.json)")
	evalCollectCmd.Flags().StringVar(&collectedPath, "output", "",
		"collected-responses output file (default <data-dir>/collected_responses.json)")

	evalRunCmd.Flags().StringVar(&collectedPath, "collected", "",
		"collected-responses JSON file (default <data-dir>/collected_responses.json)")
	evalRunCmd.Flags().StringVar(&evalOutputPath, "output", "",
		"evaluation report output file (default <data-dir>/eval_results.json)")
	evalRunCmd.Flags().BoolVar(&useJudge, "judge", false,
		"also score each case with the LLM judge")
	evalRunCmd.Flags().IntVar(&judgeConcurrency, "judge-concurrency", 0,
		"max concurrent judge calls (default 4)")

	evalCmd.AddCommand(evalCollectCmd)
	evalCmd.AddCommand(evalRunCmd)
	rootCmd.AddCommand(evalCmd)
}

func runEvalCollect(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	input := groundTruthPath
	if input == "" {
		input = filepath.Join(settings.DataDir, "ground_truth.json")
	}
	output := collectedPath
	if output == "" {
		output = filepath.Join(settings.DataDir, "collected_responses.json")
	}

	cases, err := eval.LoadGroundTruth(input)
	if err != nil {
		return err
	}
	log.Infof("loaded %d ground-truth cases from %s", len(cases), input)

	completer := agent.NewOpenAICompleter(settings.APIKey, settings.BaseURL)
	orchestrator := agent.NewOrchestrator(completer, settings.Model, settings.DataDir)

	collected := collect.New(orchestrator).Run(cmd.Context(), cases)
	if err := collect.WriteResponses(output, collected); err != nil {
		return err
	}
	fmt.Printf("Collected %d responses to %s\n", len(collected), output)
	return nil
}

func runEvalRun(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	input := collectedPath
	if input == "" {
		input = filepath.Join(settings.DataDir, "collected_responses.json")
	}
	output := evalOutputPath
	if output == "" {
		output = filepath.Join(settings.DataDir, "eval_results.json")
	}

	collected, err := eval.LoadCollected(input)
	if err != nil {
		return err
	}

	opts := []eval.Option{eval.WithJudgeConcurrency(judgeConcurrency)}
	if useJudge {
		completer := agent.NewOpenAICompleter(settings.APIKey, settings.BaseURL)
		opts = append(opts, eval.WithJudge(eval.NewLLMJudge(completer, settings.Model)))
	}

	report, err := eval.NewSuite(opts...).Evaluate(cmd.Context(), collected)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Print(eval.FormatReport(report))
	fmt.Printf("Report written to %s\n", output)
	return nil
}
