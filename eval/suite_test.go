package eval

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJudge scripts per-query scores and records which queries it saw.
type fakeJudge struct {
	mu     sync.Mutex
	scores map[string]*JudgeScore
	errs   map[string]error
	seen   []string
}

func (f *fakeJudge) Score(_ context.Context, input JudgeInput) (*JudgeScore, error) {
	f.mu.Lock()
	f.seen = append(f.seen, input.Query)
	f.mu.Unlock()
	if err := f.errs[input.Query]; err != nil {
		return nil, err
	}
	if score, ok := f.scores[input.Query]; ok {
		return score, nil
	}
	return &JudgeScore{Overall: 1}, nil
}

func sampleCollected() []Collected {
	return []Collected{
		{
			CaseID:        1,
			Query:         "What's the status of the payments service in prod?",
			ExpectedTools: []string{"get_pipeline_status"},
			ActualToolCalls: []ToolCall{
				{Name: "get_pipeline_status", Arguments: map[string]any{"service": "payments", "environment": "prod"}},
			},
			Response: "The payments pipeline in prod succeeded.",
		},
		{
			CaseID:        2,
			Query:         "The checkout service failed in staging. What went wrong?",
			ExpectedTools: []string{"get_pipeline_status", "get_job_logs"},
			ActualToolCalls: []ToolCall{
				{Name: "get_pipeline_status"},
			},
			Response: "The checkout pipeline failed.",
		},
	}
}

func TestSuiteEvaluateManualMetricsOnly(t *testing.T) {
	suite := NewSuite()
	report, err := suite.Evaluate(context.Background(), sampleCollected())
	require.NoError(t, err)

	require.Len(t, report.Cases, 2)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Summary.TotalCases)
	assert.InDelta(t, 1.0, report.Cases[0].Precision, 1e-9)
	assert.InDelta(t, 0.5, report.Cases[1].Recall, 1e-9)
	assert.InDelta(t, 0.5, report.Summary.ExactMatchRate, 1e-9)
	assert.Zero(t, report.AverageJudgeScore)
	for _, r := range report.Cases {
		assert.Nil(t, r.Judge)
	}
}

func TestSuiteEvaluateSkipsErroredCases(t *testing.T) {
	collected := append(sampleCollected(), Collected{
		CaseID:        3,
		Query:         "Show me all failed pipelines",
		ExpectedTools: []string{"get_pipeline_status"},
		Error:         "completion: connection refused",
	})

	report, err := NewSuite().Evaluate(context.Background(), collected)
	require.NoError(t, err)
	assert.Len(t, report.Cases, 2)
	assert.Equal(t, 1, report.SkippedCases)
	assert.Equal(t, 2, report.Summary.TotalCases)
}

func TestSuiteEvaluateWithJudge(t *testing.T) {
	judge := &fakeJudge{
		scores: map[string]*JudgeScore{
			"What's the status of the payments service in prod?":         {Overall: 1.0},
			"The checkout service failed in staging. What went wrong?":   {Overall: 0.5},
		},
	}
	suite := NewSuite(WithJudge(judge), WithJudgeConcurrency(2))

	report, err := suite.Evaluate(context.Background(), sampleCollected())
	require.NoError(t, err)

	require.Len(t, report.Cases, 2)
	require.NotNil(t, report.Cases[0].Judge)
	require.NotNil(t, report.Cases[1].Judge)
	assert.InDelta(t, 0.75, report.AverageJudgeScore, 1e-9)
	assert.Len(t, judge.seen, 2)
}

func TestSuiteJudgeFailureKeepsManualMetrics(t *testing.T) {
	judge := &fakeJudge{
		errs: map[string]error{
			"The checkout service failed in staging. What went wrong?": errors.New("rate limited"),
		},
	}
	suite := NewSuite(WithJudge(judge))

	report, err := suite.Evaluate(context.Background(), sampleCollected())
	require.NoError(t, err)

	require.Len(t, report.Cases, 2)
	assert.NotNil(t, report.Cases[0].Judge)
	assert.Nil(t, report.Cases[1].Judge)
	assert.Contains(t, report.Cases[1].JudgeError, "rate limited")
	// The manual metrics for the failed-judge case survive untouched.
	assert.InDelta(t, 0.5, report.Cases[1].Recall, 1e-9)
	// Only the judged case contributes to the average.
	assert.InDelta(t, 1.0, report.AverageJudgeScore, 1e-9)
}

func TestSuiteEvaluateEmpty(t *testing.T) {
	report, err := NewSuite().Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Cases)
	assert.Equal(t, 0, report.Summary.TotalCases)
}

func TestFormatReport(t *testing.T) {
	report, err := NewSuite().Evaluate(context.Background(), sampleCollected())
	require.NoError(t, err)

	out := FormatReport(report)
	assert.Contains(t, out, report.RunID)
	assert.Contains(t, out, "Average Precision")
	assert.Contains(t, out, "Exact Match Rate: 50.00%")
	assert.NotContains(t, out, "LLM-based Metrics")
}
