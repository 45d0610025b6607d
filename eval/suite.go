package eval

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/releasecopilot/rcagent/internal/log"
)

const defaultJudgeConcurrency = 4

// Report is the full outcome of evaluating a suite of collected responses.
type Report struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`

	// Cases holds per-case results in collected order.
	Cases []CaseResult `json:"results"`

	// Summary aggregates the manual metrics over the scored cases.
	Summary SuiteReport `json:"summary"`

	// AverageJudgeScore averages the judge's overall score over the cases
	// that were judged successfully. Zero when no case was judged.
	AverageJudgeScore float64 `json:"average_judge_score,omitempty"`

	// SkippedCases counts collected records excluded from scoring because
	// the agent run itself errored.
	SkippedCases int `json:"skipped_cases,omitempty"`
}

// Suite evaluates collected responses: manual metrics always, LLM judging
// optionally.
type Suite struct {
	judge            Judge
	judgeConcurrency int
	toolDefs         []ToolDefinition
	logger           log.Logger
}

// Option configures a Suite.
type Option func(*Suite)

// WithJudge enables the optional LLM scoring path.
func WithJudge(j Judge) Option {
	return func(s *Suite) { s.judge = j }
}

// WithJudgeConcurrency bounds the number of outstanding judge calls.
func WithJudgeConcurrency(n int) Option {
	return func(s *Suite) {
		if n > 0 {
			s.judgeConcurrency = n
		}
	}
}

// WithToolDefinitions overrides the tool descriptions shown to the judge.
func WithToolDefinitions(defs []ToolDefinition) Option {
	return func(s *Suite) { s.toolDefs = defs }
}

// WithLogger overrides the suite's logger.
func WithLogger(l log.Logger) Option {
	return func(s *Suite) { s.logger = l }
}

// NewSuite creates a Suite. Without options it computes manual metrics only.
func NewSuite(opts ...Option) *Suite {
	s := &Suite{
		judgeConcurrency: defaultJudgeConcurrency,
		logger:           log.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate scores every collected case and aggregates the results. Cases
// whose agent run errored are skipped (counted, not scored). When a judge is
// configured its calls run concurrently on a bounded pool; a judge failure
// is recorded on the case and never disturbs the manual metrics.
func (s *Suite) Evaluate(ctx context.Context, collected []Collected) (*Report, error) {
	runID := fmt.Sprintf("run-%s", uuid.New().String()[:8])
	s.logger.Infof("starting evaluation %s: %d collected cases", runID, len(collected))

	report := &Report{
		RunID:     runID,
		Timestamp: time.Now(),
	}

	for _, c := range collected {
		if c.Error != "" {
			s.logger.Warnf("case %d skipped: agent run errored: %s", c.CaseID, c.Error)
			report.SkippedCases++
			continue
		}
		result := ScoreCase(c.ExpectedTools, c.ActualToolCalls)
		result.CaseID = c.CaseID
		result.Query = c.Query
		report.Cases = append(report.Cases, result)
	}

	if s.judge != nil {
		if err := s.runJudge(ctx, collected, report.Cases); err != nil {
			return nil, err
		}
	}

	report.Summary = Aggregate(report.Cases)

	var judgeSum float64
	var judged int
	for _, r := range report.Cases {
		if r.Judge != nil {
			judgeSum += r.Judge.Overall
			judged++
		}
	}
	if judged > 0 {
		report.AverageJudgeScore = judgeSum / float64(judged)
	}

	s.logger.Infof("evaluation %s complete: %d cases, exact match rate %.2f",
		runID, report.Summary.TotalCases, report.Summary.ExactMatchRate)
	return report, nil
}

// runJudge scores cases with the judge on a bounded worker pool. Each call
// is independent; failures are recorded per case.
func (s *Suite) runJudge(ctx context.Context, collected []Collected, results []CaseResult) error {
	pool, err := ants.NewPool(s.judgeConcurrency)
	if err != nil {
		return fmt.Errorf("create judge pool: %w", err)
	}
	defer pool.Release()

	byID := make(map[int]Collected, len(collected))
	for _, c := range collected {
		byID[c.CaseID] = c
	}

	var wg sync.WaitGroup
	for i := range results {
		c, ok := byID[results[i].CaseID]
		if !ok {
			continue
		}
		result := &results[i]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			score, err := s.judge.Score(ctx, JudgeInput{
				Query:           c.Query,
				Response:        c.Response,
				ExpectedTools:   c.ExpectedTools,
				ToolCalls:       c.ActualToolCalls,
				ToolDefinitions: s.toolDefs,
			})
			if err != nil {
				s.logger.Warnf("case %d: judge unavailable: %v", c.CaseID, err)
				result.JudgeError = err.Error()
				return
			}
			result.Judge = score
		}); err != nil {
			wg.Done()
			result.JudgeError = err.Error()
		}
	}
	wg.Wait()
	return nil
}

// FormatReport renders a report as a human-readable summary.
func FormatReport(report *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Evaluation ID: %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Timestamp: %s\n", report.Timestamp.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Cases: %d", report.Summary.TotalCases))
	if report.SkippedCases > 0 {
		sb.WriteString(fmt.Sprintf(" (%d skipped)", report.SkippedCases))
	}
	sb.WriteString("\nManual Metrics:\n")
	sb.WriteString(fmt.Sprintf("  Average Precision: %.2f%%\n", report.Summary.AveragePrecision*100))
	sb.WriteString(fmt.Sprintf("  Average Recall: %.2f%%\n", report.Summary.AverageRecall*100))
	sb.WriteString(fmt.Sprintf("  Average F1 Score: %.2f%%\n", report.Summary.AverageF1*100))
	sb.WriteString(fmt.Sprintf("  Exact Match Rate: %.2f%%\n", report.Summary.ExactMatchRate*100))

	var judged bool
	for _, r := range report.Cases {
		if r.Judge != nil {
			judged = true
			break
		}
	}
	if judged {
		sb.WriteString("LLM-based Metrics:\n")
		sb.WriteString(fmt.Sprintf("  Average Overall Score: %.2f%%\n", report.AverageJudgeScore*100))
	}

	for _, r := range report.Cases {
		sb.WriteString(fmt.Sprintf("  [%d] P=%.2f R=%.2f F1=%.2f exact=%v  %s\n",
			r.CaseID, r.Precision, r.Recall, r.F1, r.ExactMatch, r.Query))
		if r.JudgeError != "" {
			sb.WriteString(fmt.Sprintf("      judge unavailable: %s\n", r.JudgeError))
		}
	}

	return sb.String()
}
