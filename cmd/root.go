// Package cmd contains the rcagent command-line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/releasecopilot/rcagent/internal/config"
	"github.com/releasecopilot/rcagent/internal/log"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "rcagent",
	Short: "Release Copilot - CI/CD deployment assistant",
	Long: `rcagent is a CI/CD deployment assistant that answers questions about
deployment pipelines and job failures. It bundles the chat agent, its two
MCP tool servers, a REST API, and the tool-selection evaluation harness.`,
	SilenceUsage: true,
}

// SetVersion sets the version reported by the root command. Called from
// main with the build-time value.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI. It returns the error for main to translate into an
// exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "rcagent.yaml",
		"path to the optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn, error")
}

// loadSettings resolves settings from config file and environment, then
// applies the CLI log-level override.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return config.Settings{}, err
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	log.SetLevel(settings.LogLevel)
	return settings, nil
}
