// Command baton runs multi-agent workflows defined in a YAML file.
//
// Configuration is via environment variables (a .env file is loaded when
// present):
//
//	BATON_AGENTS_FILE       - Agent definitions (default: agents.yaml)
//	BATON_DEFAULT_AGENT     - Agent used when none is named
//	BATON_MODEL             - Default model, e.g. claude-sonnet-4-5
//	BATON_MAX_HANDOFF_DEPTH - Longest handoff chain (default: 8)
//	BATON_TIMEOUT           - Per-run timeout (default: 5m)
//	BATON_CONCURRENCY       - Parallel runs in batch mode (default: 4)
//	BATON_RUN_RETRIES       - Attempts per batch run (default: 1)
//	BATON_REDIS_ADDR        - Store transcripts in Redis instead of memory
//	BATON_OTLP_ENDPOINT     - Export traces over OTLP/HTTP
//	BATON_MCP_COMMAND       - Install tools from an MCP server over stdio
//	BATON_MCP_URL           - Install tools from an MCP server over SSE
//	BATON_WORKSPACE         - Offer read_file and search_files under this directory
//	BATON_HTTP_HOSTS        - Offer http_request for these hosts ("*" for any)
//	BATON_PORT              - Port for serve (default: 8000)
//	BATON_LOG_LEVEL         - debug, info, warn, error (default: info)
//	BATON_LOG_FORMAT        - text or json (default: text)
//	ANTHROPIC_API_KEY, OPENAI_API_KEY, GOOGLE_API_KEY
//
// Usage:
//
//	baton run triage "My invoice is wrong"
//	baton batch jobs.jsonl > results.jsonl
//	baton serve
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var agentsFileFlag string

var rootCmd = &cobra.Command{
	Use:           "baton",
	Short:         "baton - run agents that hand tasks to each other",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&agentsFileFlag, "agents", "a", "", "Agent definitions file (overrides BATON_AGENTS_FILE)")
	rootCmd.AddCommand(runCmd, batchCmd, serveCmd, mcpCmd, agentsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadApp loads the configuration and wires an App. The caller closes it.
func loadApp(cmd *cobra.Command) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if agentsFileFlag != "" {
		cfg.AgentsFile = agentsFileFlag
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	return NewApp(cmd.Context(), cfg, logger)
}

func closeApp(app *App) {
	if err := app.Close(context.Background()); err != nil {
		app.logger.Warn("close failed", "error", err)
	}
}
