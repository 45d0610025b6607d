// Command rcagent is the Release Copilot CI/CD assistant: chat agent, MCP
// tool servers, REST API and evaluation harness in one binary.
package main

import (
	"os"

	"github.com/releasecopilot/rcagent/cmd"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
