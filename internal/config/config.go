// Package config loads runtime settings for rcagent.
//
// Settings come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and environment variables. The environment names
// mirror the original deployment (AZURE_OPENAI_* are honored as aliases so
// existing .env files keep working).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default listen addresses and ports, matching the original deployment.
const (
	DefaultAPIAddr         = ":8000"
	DefaultPipelineMCPAddr = ":8001"
	DefaultJobLogsMCPAddr  = ":8002"
	DefaultModel           = "gpt-4o-mini"
	DefaultDataDir         = "data"
)

// Settings holds every knob the commands need.
type Settings struct {
	// APIKey authenticates against the OpenAI-compatible backend.
	APIKey string `yaml:"api_key"`
	// BaseURL points at the backend. Empty means the public OpenAI API.
	BaseURL string `yaml:"base_url"`
	// Model is the chat model (deployment) name.
	Model string `yaml:"model"`

	// DataDir holds pipelines.json, log.json and the eval fixtures.
	DataDir string `yaml:"data_dir"`

	APIAddr         string `yaml:"api_addr"`
	PipelineMCPAddr string `yaml:"pipeline_mcp_addr"`
	JobLogsMCPAddr  string `yaml:"job_logs_mcp_addr"`

	LogLevel string `yaml:"log_level"`

	// TraceEndpoint is the OTLP collector endpoint (host:port). Empty
	// disables tracing.
	TraceEndpoint string `yaml:"trace_endpoint"`
	// TraceProtocol selects the OTLP transport: "grpc" (default) or "http".
	TraceProtocol string `yaml:"trace_protocol"`
}

func defaults() Settings {
	return Settings{
		Model:           DefaultModel,
		DataDir:         DefaultDataDir,
		APIAddr:         DefaultAPIAddr,
		PipelineMCPAddr: DefaultPipelineMCPAddr,
		JobLogsMCPAddr:  DefaultJobLogsMCPAddr,
		LogLevel:        "info",
		TraceProtocol:   "grpc",
	}
}

// Load builds Settings from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist) and the environment.
func Load(path string) (Settings, error) {
	s := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// A missing config file is fine, env and defaults cover it.
		case err != nil:
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&s)
	return s, nil
}

func applyEnv(s *Settings) {
	setFromEnv(&s.APIKey, "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY")
	setFromEnv(&s.BaseURL, "OPENAI_BASE_URL", "AZURE_OPENAI_ENDPOINT")
	setFromEnv(&s.Model, "RCAGENT_MODEL", "AZURE_OPENAI_DEPLOYMENT")
	setFromEnv(&s.DataDir, "RCAGENT_DATA_DIR")
	setFromEnv(&s.APIAddr, "RCAGENT_API_ADDR")
	setFromEnv(&s.PipelineMCPAddr, "RCAGENT_PIPELINE_MCP_ADDR")
	setFromEnv(&s.JobLogsMCPAddr, "RCAGENT_JOB_LOGS_MCP_ADDR")
	setFromEnv(&s.LogLevel, "RCAGENT_LOG_LEVEL")
	setFromEnv(&s.TraceEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setFromEnv(&s.TraceProtocol, "RCAGENT_TRACE_PROTOCOL")
}

func setFromEnv(dst *string, names ...string) {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			*dst = v
			return
		}
	}
}
