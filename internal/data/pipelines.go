// Package data implements the JSON-backed stores behind the lookup tools:
// deployment pipeline records and job execution logs.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Pipeline is one deployment pipeline record from pipelines.json.
type Pipeline struct {
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Status      string `json:"status"`
	PipelineID  string `json:"pipeline_id"`
	Branch      string `json:"branch"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
	FailedJobID string `json:"failed_job_id,omitempty"`
}

// PipelineStore reads pipeline records from a JSON file. The file is read on
// every lookup so edits show up without a restart.
type PipelineStore struct {
	path string
}

// NewPipelineStore returns a store backed by dataDir/pipelines.json.
func NewPipelineStore(dataDir string) *PipelineStore {
	return &PipelineStore{path: filepath.Join(dataDir, "pipelines.json")}
}

func (s *PipelineStore) load() ([]Pipeline, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read pipelines data: %w", err)
	}
	var pipelines []Pipeline
	if err := json.Unmarshal(raw, &pipelines); err != nil {
		return nil, fmt.Errorf("parse pipelines data %s: %w", s.path, err)
	}
	return pipelines, nil
}

// Status returns the pipeline record for the service/environment pair. The
// second return reports whether a matching record exists.
func (s *PipelineStore) Status(service, environment string) (Pipeline, bool, error) {
	pipelines, err := s.load()
	if err != nil {
		return Pipeline{}, false, err
	}
	for _, p := range pipelines {
		if p.Service == service && p.Environment == environment {
			return p, true, nil
		}
	}
	return Pipeline{}, false, nil
}

// List returns every pipeline record.
func (s *PipelineStore) List() ([]Pipeline, error) {
	return s.load()
}
