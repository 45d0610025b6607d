package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Collected is one record from a collected-responses file: everything the
// collector captured for a single test case, expectations included, so a
// collected file is self-contained and cannot drift out of pairing with the
// ground truth it was produced from.
type Collected struct {
	CaseID           int            `json:"test_case_id"`
	Query            string         `json:"query"`
	ExpectedTools    []string       `json:"expected_tools"`
	ExpectedToolArgs map[string]any `json:"expected_tool_args,omitempty"`
	ActualToolCalls  []ToolCall     `json:"actual_tool_calls"`
	Response         string         `json:"response,omitempty"`

	// Error records an agent-run failure for this case. Errored cases are
	// kept in the file but excluded from scoring.
	Error string `json:"error,omitempty"`

	Timestamp time.Time `json:"timestamp,omitempty"`
}

// LoadGroundTruth reads and validates a ground-truth fixture. Every record
// needs a query and an expected_tools list (an empty list is valid and means
// no tool should be called).
func LoadGroundTruth(path string) ([]TestCase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}
	var cases []TestCase
	if err := json.Unmarshal(raw, &cases); err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}
	for i, tc := range cases {
		if tc.Query == "" {
			return nil, fmt.Errorf("ground truth case %d: missing query", i+1)
		}
		if tc.ExpectedTools == nil {
			return nil, fmt.Errorf("ground truth case %d (%q): missing expected_tools", i+1, tc.Query)
		}
	}
	return cases, nil
}

// LoadCollected reads and validates a collected-responses file. A tool call
// without a name cannot be compared against anything, and a duplicated or
// missing case id would make results unattributable, so both are rejected
// here rather than silently coerced during scoring.
func LoadCollected(path string) ([]Collected, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collected responses: %w", err)
	}
	var collected []Collected
	if err := json.Unmarshal(raw, &collected); err != nil {
		return nil, fmt.Errorf("parse collected responses %s: %w", path, err)
	}

	seen := make(map[int]struct{}, len(collected))
	for i, c := range collected {
		if c.CaseID == 0 {
			return nil, fmt.Errorf("collected record %d: missing test_case_id", i+1)
		}
		if _, dup := seen[c.CaseID]; dup {
			return nil, fmt.Errorf("collected record %d: duplicate test_case_id %d", i+1, c.CaseID)
		}
		seen[c.CaseID] = struct{}{}
		if c.Query == "" {
			return nil, fmt.Errorf("collected case %d: missing query", c.CaseID)
		}
		if c.ExpectedTools == nil {
			return nil, fmt.Errorf("collected case %d: missing expected_tools", c.CaseID)
		}
		for j, call := range c.ActualToolCalls {
			if call.Name == "" {
				return nil, fmt.Errorf("collected case %d: tool call %d has no name", c.CaseID, j+1)
			}
		}
	}
	return collected, nil
}
