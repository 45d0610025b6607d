// Package collect runs the agent over the ground-truth queries and captures
// the responses and tool calls the evaluator scores later.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/releasecopilot/rcagent/eval"
	"github.com/releasecopilot/rcagent/internal/agent"
	"github.com/releasecopilot/rcagent/internal/log"
)

// Runner is the slice of the agent the collector needs.
type Runner interface {
	Run(ctx context.Context, query string) (*agent.Response, error)
}

// Collector drives one agent over a suite of test cases.
type Collector struct {
	runner Runner
	logger log.Logger
}

// New builds a Collector for the given runner.
func New(runner Runner) *Collector {
	return &Collector{runner: runner, logger: log.Default}
}

// Run executes the agent for every test case. A failed run is recorded on
// the case (so the evaluator can skip it) without aborting the collection.
func (c *Collector) Run(ctx context.Context, cases []eval.TestCase) []eval.Collected {
	collected := make([]eval.Collected, 0, len(cases))
	for i, tc := range cases {
		caseID := i + 1
		c.logger.Infof("collecting case %d/%d: %s", caseID, len(cases), tc.Query)

		record := eval.Collected{
			CaseID:           caseID,
			Query:            tc.Query,
			ExpectedTools:    tc.ExpectedTools,
			ExpectedToolArgs: tc.ExpectedToolArgs,
			Timestamp:        time.Now(),
		}

		resp, err := c.runner.Run(ctx, tc.Query)
		if err != nil {
			c.logger.Errorf("case %d: agent run failed: %v", caseID, err)
			record.Error = err.Error()
			collected = append(collected, record)
			continue
		}

		record.Response = resp.Text
		record.ActualToolCalls = toEvalCalls(resp.ToolCalls)
		c.logger.Infof("case %d: %d tool calls", caseID, len(record.ActualToolCalls))
		collected = append(collected, record)
	}
	return collected
}

func toEvalCalls(calls []agent.ToolCallRecord) []eval.ToolCall {
	out := make([]eval.ToolCall, 0, len(calls))
	for _, call := range calls {
		out = append(out, eval.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		})
	}
	return out
}

// WriteResponses persists collected records as indented JSON, the format
// LoadCollected reads back.
func WriteResponses(path string, collected []eval.Collected) error {
	data, err := json.MarshalIndent(collected, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collected responses: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write collected responses: %w", err)
	}
	return nil
}
