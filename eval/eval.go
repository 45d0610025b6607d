// Package eval scores how well an agent selected tools for a query.
// It compares the tool calls an agent actually made against a ground-truth
// expectation and produces standard precision/recall/F1/exact-match metrics
// per test case, aggregated across a suite.
package eval

import "sort"

// ToolCall is one observed tool invocation captured from an agent run.
type ToolCall struct {
	// ID is the call id assigned by the model, when available.
	ID string `json:"id,omitempty"`

	// Name identifies which tool was invoked.
	Name string `json:"name"`

	// Arguments is the argument mapping supplied to the tool.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// TestCase is one ground-truth record: a query and the tools a correct agent
// response should invoke for it.
type TestCase struct {
	// Query is the user request. The evaluator only echoes it in reports.
	Query string `json:"query"`

	// ExpectedTools lists the tool names a correct response invokes.
	ExpectedTools []string `json:"expected_tools"`

	// ExpectedToolArgs is a single shared argument expectation for the
	// case. The ground-truth format cannot attribute arguments to
	// individual tools when several are expected, so the metric ignores
	// it; it is carried through for report consumers.
	ExpectedToolArgs map[string]any `json:"expected_tool_args,omitempty"`
}

// CaseResult holds the manual metrics for a single test case, plus the
// diagnostic name sets that explain them.
type CaseResult struct {
	// CaseID refers back to the originating test case (1-based).
	CaseID int `json:"test_case_id,omitempty"`

	// Query is the originating user request, for reporting.
	Query string `json:"query,omitempty"`

	// Precision is the fraction of observed tool names that were expected.
	Precision float64 `json:"precision"`

	// Recall is the fraction of expected tool names that were observed.
	Recall float64 `json:"recall"`

	// F1 is the harmonic mean of precision and recall, 0 when both are 0.
	F1 float64 `json:"f1_score"`

	// ExactMatch is true iff the observed and expected name sets are equal.
	ExactMatch bool `json:"exact_match"`

	ExpectedTools []string `json:"expected_tools"`
	ActualTools   []string `json:"actual_tools"`
	CorrectTools  []string `json:"correct_tools"`
	MissingTools  []string `json:"missing_tools"`
	ExtraTools    []string `json:"extra_tools"`

	// Judge carries the optional LLM-based scores. Nil when judging was
	// disabled or failed; a failure is recorded in JudgeError and never
	// affects the manual metrics above.
	Judge      *JudgeScore `json:"llm_evaluation,omitempty"`
	JudgeError string      `json:"judge_error,omitempty"`
}

// SuiteReport aggregates case results across a suite.
type SuiteReport struct {
	TotalCases       int     `json:"total_cases"`
	AveragePrecision float64 `json:"average_precision"`
	AverageRecall    float64 `json:"average_recall"`
	AverageF1        float64 `json:"average_f1"`
	ExactMatchRate   float64 `json:"exact_match_rate"`
}

// ScoreCase computes the manual tool-selection metrics for one case. It is a
// pure function and total over its inputs: both sequences may be empty, and
// order and duplicates do not matter (comparison is over unique names).
//
// Conventions for the degenerate cases:
//   - no observed calls: precision is 1 when nothing was expected either,
//     otherwise 0;
//   - nothing expected: recall is 1 (vacuously satisfied);
//   - precision+recall == 0: F1 is 0.
//
// Calls with an empty name carry no comparable identity and are ignored
// here; the load boundary rejects them before scoring (see LoadCollected).
func ScoreCase(expectedTools []string, calls []ToolCall) CaseResult {
	expected := make(map[string]struct{}, len(expectedTools))
	for _, name := range expectedTools {
		if name != "" {
			expected[name] = struct{}{}
		}
	}
	actual := make(map[string]struct{}, len(calls))
	for _, call := range calls {
		if call.Name != "" {
			actual[call.Name] = struct{}{}
		}
	}

	var correct, missing, extra []string
	for name := range expected {
		if _, ok := actual[name]; ok {
			correct = append(correct, name)
		} else {
			missing = append(missing, name)
		}
	}
	for name := range actual {
		if _, ok := expected[name]; !ok {
			extra = append(extra, name)
		}
	}

	truePositives := len(correct)

	precision := 0.0
	switch {
	case len(actual) > 0:
		precision = float64(truePositives) / float64(len(actual))
	case len(expected) == 0:
		precision = 1.0
	}

	recall := 1.0
	if len(expected) > 0 {
		recall = float64(truePositives) / float64(len(expected))
	}

	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	exact := len(expected) == len(actual) && truePositives == len(expected)

	return CaseResult{
		Precision:     precision,
		Recall:        recall,
		F1:            f1,
		ExactMatch:    exact,
		ExpectedTools: sortedKeys(expected),
		ActualTools:   sortedKeys(actual),
		CorrectTools:  sorted(correct),
		MissingTools:  sorted(missing),
		ExtraTools:    sorted(extra),
	}
}

// Aggregate averages case metrics into a suite report. An empty input yields
// a zero-valued report with TotalCases 0.
func Aggregate(results []CaseResult) SuiteReport {
	report := SuiteReport{TotalCases: len(results)}
	if len(results) == 0 {
		return report
	}

	var exactMatches int
	for _, r := range results {
		report.AveragePrecision += r.Precision
		report.AverageRecall += r.Recall
		report.AverageF1 += r.F1
		if r.ExactMatch {
			exactMatches++
		}
	}
	n := float64(len(results))
	report.AveragePrecision /= n
	report.AverageRecall /= n
	report.AverageF1 /= n
	report.ExactMatchRate = float64(exactMatches) / n
	return report
}

func sortedKeys(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sorted(names []string) []string {
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	return names
}
