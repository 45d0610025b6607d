package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// JobLogStore reads job execution logs from a JSON file mapping job id to a
// list of log lines.
type JobLogStore struct {
	path string
}

// NewJobLogStore returns a store backed by dataDir/log.json.
func NewJobLogStore(dataDir string) *JobLogStore {
	return &JobLogStore{path: filepath.Join(dataDir, "log.json")}
}

func (s *JobLogStore) load() (map[string][]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read logs data: %w", err)
	}
	var logs map[string][]string
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, fmt.Errorf("parse logs data %s: %w", s.path, err)
	}
	return logs, nil
}

// Logs returns the log lines for jobID. The second return reports whether
// the job has any recorded logs.
func (s *JobLogStore) Logs(jobID string) ([]string, bool, error) {
	logs, err := s.load()
	if err != nil {
		return nil, false, err
	}
	lines, ok := logs[jobID]
	return lines, ok, nil
}

// JobIDs returns every job id with recorded logs, sorted for stable output.
func (s *JobLogStore) JobIDs() ([]string, error) {
	logs, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(logs))
	for id := range logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
